// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Command taskport-target prints its pid and idles until interrupted, giving
// taskport a process to acquire.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jongio/taskport/logutil"
	"github.com/jongio/taskport/target"
	"github.com/jongio/taskport/version"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		interval time.Duration
		debug    bool
	)

	cmd := &cobra.Command{
		Use:           "taskport-target",
		Short:         "Print this process's pid and wait for SIGINT or SIGTERM",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				logutil.SetupLogger(true, false)
			}
			if interval <= 0 {
				return fmt.Errorf("invalid interval %s: must be positive", interval)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return target.Run(ctx, cmd.OutOrStdout(), os.Getpid(), interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", target.DefaultInterval, "How often the idle loop wakes")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	cmd.SetContext(context.Background())
	cmd.AddCommand(version.NewCommand(version.New("taskport-target")))
	return cmd
}
