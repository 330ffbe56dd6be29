// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Command taskport checks whether a macOS task handle can be acquired for a
// process, using task_for_pid or a processor set enumeration.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.err)
		}
		if exitErr.usage {
			fmt.Fprintln(os.Stderr, cmd.UsageString())
		}
		return exitErr.code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitFailure
}
