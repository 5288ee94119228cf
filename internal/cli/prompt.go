package cli

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gookit/color"
)

func readAnswer(in *bufio.Reader) (string, bool) {
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

// askForConfirmation defaults to yes. Closed input counts as no.
func askForConfirmation(out io.Writer, in *bufio.Reader, question string) bool {
	fmt.Fprintf(out, "%s %s ", question, color.Gray.Sprint("(Y/n)"))
	answer, ok := readAnswer(in)
	if !ok {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}

// selectMany prints a numbered list of choices and returns the picked ones,
// in list order. Answers are comma separated numbers or ranges ("1,3-5"),
// "all", or nothing.
func selectMany(out io.Writer, in *bufio.Reader, message string, choices []string) ([]string, error) {
	fmt.Fprintf(out, "%s:\n", message)
	width := len(strconv.Itoa(len(choices)))
	for i, choice := range choices {
		fmt.Fprintf(out, "  %*d) %s\n", width, i+1, choice)
	}
	fmt.Fprintf(out, "%s ", color.Gray.Sprint("Enter numbers or ranges (e.g. 1,3-5), 'all', or nothing to skip:"))

	answer, ok := readAnswer(in)
	if !ok {
		fmt.Fprintln(out)
		return nil, nil
	}
	indexes, err := parseSelection(answer, len(choices))
	if err != nil {
		return nil, err
	}

	selected := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		selected = append(selected, choices[idx])
	}
	return selected, nil
}

func parseSelection(answer string, count int) ([]int, error) {
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer == "" {
		return nil, nil
	}

	picked := make(map[int]bool)
	if answer == "all" || answer == "*" {
		for i := 0; i < count; i++ {
			picked[i] = true
		}
	} else {
		for _, part := range strings.Split(answer, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			lo, hi, err := parseRange(part)
			if err != nil {
				return nil, err
			}
			if lo < 1 || hi > count || lo > hi {
				return nil, fmt.Errorf("invalid selection %q: choose between 1 and %d", part, count)
			}
			for n := lo; n <= hi; n++ {
				picked[n-1] = true
			}
		}
	}

	indexes := make([]int, 0, len(picked))
	for idx := range picked {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	return indexes, nil
}

func parseRange(part string) (int, int, error) {
	from, to, isRange := strings.Cut(part, "-")
	lo, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid selection %q", part)
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid selection %q", part)
	}
	return lo, hi, nil
}
