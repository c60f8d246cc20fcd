package main

import (
	"errors"
	"os"
	"strings"

	"github.com/flarebyte/taskrun/cmd/taskrun/root"
)

type exitCoder interface {
	ExitCode() int
}

func main() {
	if err := root.Execute(os.Args[1:]); err != nil {
		// Print a short, single-line error to stderr on failures.
		// Silent aborts carry no message and print nothing.
		msg := strings.Join(strings.Fields(err.Error()), " ")
		if msg != "" {
			_, _ = os.Stderr.WriteString(msg + "\n")
		}
		code := 1
		var ec exitCoder
		if errors.As(err, &ec) {
			if c := ec.ExitCode(); c != 0 {
				code = c
			}
		}
		os.Exit(code)
	}
}
