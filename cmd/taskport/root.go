// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jongio/taskport/cliout"
	"github.com/jongio/taskport/config"
	"github.com/jongio/taskport/identity"
	"github.com/jongio/taskport/kernel"
	"github.com/jongio/taskport/logutil"
	"github.com/jongio/taskport/taskport"
	"github.com/jongio/taskport/version"
	"github.com/spf13/cobra"
)

// newKernel is replaced in tests.
var newKernel = kernel.New

type rootOptions struct {
	configPath  string
	method      taskport.Strategy
	whoami      bool
	output      string
	debug       bool
	logFormat   string
	logLevel    string
	metricsFile string
	noColor     bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{method: taskport.DefaultStrategy}

	cmd := &cobra.Command{
		Use:   "taskport <pid> | --whoami",
		Short: "Check whether a task handle can be acquired for a process",
		Long: `taskport asks the kernel for the task handle of a process and reports
whether it succeeded. The handle is released before the command exits.

Methods:
  direct      call task_for_pid (default, alias: traditional)
  enumerate   walk the host's processor sets (alias: wrapper)

Examples:
  # Try task_for_pid
  sudo taskport 4242

  # Try the processor set enumeration
  sudo taskport 4242 --method enumerate

  # Show the identity the kernel will check
  taskport --whoami`,
		Args:          validateArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.whoami {
				return runWhoami()
			}
			if len(args) == 0 {
				return usageError("invalid or missing PID")
			}
			return opts.runCheck(args[0])
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file (env: "+config.EnvConfig+")")
	flags.StringVarP(&opts.output, "output", "o", "default", "Output format: default, json")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text, json")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	local := cmd.Flags()
	local.VarP(&opts.method, "method", "m", "Acquisition method: direct, enumerate")
	local.BoolVar(&opts.whoami, "whoami", false, "Print the real and effective user ids and exit")
	local.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{code: exitUsage, err: err, usage: true}
	})

	cmd.AddCommand(version.NewCommand(version.New("taskport")))
	return cmd
}

func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return usageError("expected a single PID, got %d arguments", len(args))
	}
	return nil
}

// resolve merges defaults, the config file, the environment and any flags
// set on the command line, then applies the output and logging settings.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Method = string(o.method)
	}
	if flags.Changed("output") {
		cfg.Output = o.output
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = o.metricsFile
	}
	if flags.Changed("no-color") {
		cfg.NoColor = o.noColor
	}

	if err := cfg.Validate(); err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	if err := cliout.SetFormat(cfg.Output); err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	structured, err := logutil.ParseFormat(cfg.LogFormat)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	logutil.SetupLogger(cfg.Debug, structured)
	if !cfg.Debug {
		logutil.SetLevel(logutil.ParseLevel(cfg.LogLevel))
	}
	if cfg.NoColor {
		cliout.NoColor()
	}

	o.cfg = cfg
	return nil
}

func runWhoami() error {
	id := identity.Current()
	return cliout.Print(id, func() {
		cliout.Plain("%s", id)
	})
}

func (o *rootOptions) runCheck(arg string) error {
	pid, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return usageError("invalid or missing PID: %q", arg)
	}
	if err := taskport.ValidatePID(pid); err != nil {
		return usageError("%v", err)
	}

	strategy, err := taskport.ParseStrategy(o.cfg.Method)
	if err != nil {
		return usageError("%v", err)
	}

	runID := uuid.NewString()
	log := logutil.NewLogger("cli").WithFields("run", runID).WithTarget(pid).WithStrategy(string(strategy))

	cliout.Label("Target PID", strconv.Itoa(pid))
	cliout.Label("Method", string(strategy))
	cliout.Divider()
	cliout.Plain("Trying %s...", describe(strategy))

	k, err := newKernel()
	if err != nil {
		log.Debug("kernel unavailable", "error", err)
		if cliout.IsJSON() {
			if jerr := cliout.PrintJSON(unsupportedReport(runID, pid, strategy, err)); jerr != nil {
				return jerr
			}
		} else {
			cliout.Plain("FAIL: %v", err)
		}
		return silentExit(exitFailure)
	}

	log.Debug("dispatching")
	res, releaseErr := taskport.NewDispatcher(k).Dispatch(pid, strategy, func(res taskport.Result) {
		printResult(runID, res)
	})

	if o.cfg.MetricsFile != "" {
		if err := taskport.WriteMetrics(o.cfg.MetricsFile); err != nil {
			log.Warn("failed to write metrics file", "path", o.cfg.MetricsFile, "error", err)
		}
	}

	if releaseErr != nil {
		return &exitError{code: exitFailure, err: releaseErr}
	}
	if code := exitCode(res); code != exitSuccess {
		return silentExit(code)
	}
	return nil
}

// exitCode maps a dispatch result to the process exit code.
func exitCode(res taskport.Result) int {
	if res.Found() {
		return exitSuccess
	}
	switch res.Kind() {
	case taskport.KindInvalidConfiguration, taskport.KindInvalidTarget:
		return exitUsage
	}
	return exitFailure
}

func describe(s taskport.Strategy) string {
	if s == taskport.StrategyEnumerate {
		return "processor set enumeration"
	}
	return "task_for_pid()"
}
