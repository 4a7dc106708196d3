package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/df07/go-phase-functions/internal/config"
	"github.com/df07/go-phase-functions/internal/logger"
	"github.com/df07/go-phase-functions/pkg/core"
	"github.com/df07/go-phase-functions/pkg/loaders"
	"github.com/df07/go-phase-functions/pkg/medium"
	"github.com/df07/go-phase-functions/pkg/verify"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("phasecheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := config.RegisterFlags(fs)
	help := fs.Bool("help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		// -h is handled by the flag package, which has already printed usage
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *help {
		fmt.Fprintln(stdout, "Phase function checker")
		fmt.Fprintln(stdout, "Usage: phasecheck [options]")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Options:")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Every phase function in the input file is checked for normalization,")
		fmt.Fprintln(stdout, "sampling/evaluation consistency and per-component decomposition.")
		return 0
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	if flags.WriteConfig != "" {
		if err := cfg.SaveTo(flags.WriteConfig); err != nil {
			fmt.Fprintf(stderr, "Error writing config: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Config written to %s\n", flags.WriteConfig)
		return 0
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(stderr, "Error initializing logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ok, err := checkFile(cfg, stdout)
	if err != nil {
		logger.Log.Error("phase check failed", zap.Error(err))
		return 1
	}
	if !ok {
		return 1
	}
	return 0
}

// canonicalInteraction is the interaction every phase function is checked at
func canonicalInteraction() medium.Interaction {
	return medium.NewInteraction(core.NewVec3(0.5, 0.5, 0.5), core.NewVec3(0, 0, 1))
}

// checkFile verifies every phase function of the configured input. It returns
// false when the description has invalid entries or a check fails.
func checkFile(cfg *config.Config, out io.Writer) (bool, error) {
	phases, loadErr := loaders.LoadPhases(cfg.Input.Path, logger.Log)
	if phases == nil {
		return false, loadErr
	}
	for _, err := range multierr.Errors(loadErr) {
		logger.Log.Error("invalid phase description", zap.Error(err))
	}

	runner, err := verify.NewRunner(cfg.Verify.Options(), logger.Log)
	if err != nil {
		return false, err
	}

	names := make([]string, 0, len(phases))
	for name := range phases {
		names = append(names, name)
	}
	slices.Sort(names)

	logger.Log.Info("checking phase functions",
		zap.String("input", cfg.Input.Path),
		zap.Int("count", len(names)),
		zap.Int("samples", cfg.Verify.Samples))

	mi := canonicalInteraction()
	passed := loadErr == nil
	for _, name := range names {
		start := time.Now()
		report, err := runner.Run(phases[name], &mi)
		if err != nil {
			return false, fmt.Errorf("checking %q: %w", name, err)
		}

		failures := report.Failures(cfg.Verify.Tolerance)
		printReport(out, name, report, failures)
		if len(failures) > 0 {
			passed = false
			logger.Log.Warn("phase function failed checks",
				zap.String("name", name),
				zap.Strings("failures", failures))
		}
		logger.Log.Debug("checked phase function",
			zap.String("name", name),
			zap.Duration("elapsed", time.Since(start)))
	}

	if !passed && loadErr != nil {
		return false, errors.New("phase description has invalid entries")
	}
	return passed, nil
}

func printReport(w io.Writer, name string, report verify.Report, failures []string) {
	status := "PASS"
	if len(failures) > 0 {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s %-16s %s\n", status, name, report.Phase)
	fmt.Fprintf(w, "     integral=%.4f±%.4f pdf_err=%.2g component_err=%.2g components=%d flags=%v\n",
		report.Integral, report.IntegralStdErr, report.MaxPDFError, report.MaxComponent,
		report.Components, report.Flags)
	for _, failure := range failures {
		fmt.Fprintf(w, "     %s\n", failure)
	}
}
