package cli

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// resolveProgressReporter draws a spinner on an interactive stderr while
// modules are being resolved.
type resolveProgressReporter struct {
	enabled bool
	label   string
	start   time.Time
	spinner int
	lastLen int
}

func newResolveProgressReporter(label string, quiet bool) *resolveProgressReporter {
	stat, err := os.Stderr.Stat()
	enabled := err == nil && (stat.Mode()&os.ModeCharDevice) != 0 && !quiet
	return &resolveProgressReporter{
		enabled: enabled,
		label:   label,
		start:   time.Now(),
	}
}

func (r *resolveProgressReporter) Update(module string, count int) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	module = strings.TrimSpace(module)
	if len(module) > 88 {
		module = "..." + module[len(module)-85:]
	}

	r.printStatus(fmt.Sprintf("%s %s %d %s", frame, r.label, count, module))
}

func (r *resolveProgressReporter) Done(count int) {
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	r.printStatus(fmt.Sprintf("%s complete (%d modules in %s)", r.label, count, elapsed))
	fmt.Fprintln(os.Stderr)
}

func (r *resolveProgressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(os.Stderr, "\r%s", status)
}
