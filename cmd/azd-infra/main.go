package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/sinedied/azd-infra/internal/cli"
)

var version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code. A failed
// check has already reported its findings, so only its exit code remains.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := cli.NewRootCommand(version)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, cli.ErrIssuesFound) {
			fmt.Fprintln(stderr, color.Red.Sprint(err))
		}
		return 1
	}
	return 0
}
