// faulttrace is a bounded diagnostic-event recorder for low-level platform
// modules. The CLI replays fault scenarios through the recorder and prints
// a digest of what the store retained, for tuning capacity and filter
// settings before embedding the recorder in a target.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/setevik/faulttrace/internal/config"
	"github.com/setevik/faulttrace/internal/event"
	"github.com/setevik/faulttrace/internal/guard"
	"github.com/setevik/faulttrace/internal/tracer"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "simulate":
			runSimulate(os.Args[2:])
			return
		case "version":
			fmt.Println("faulttrace", version)
			return
		}
	}

	fmt.Fprintln(os.Stderr, "usage: faulttrace <simulate|version> [flags]")
	os.Exit(2)
}

func runSimulate(args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	scenarioPath := fs.String("scenario", "", "path to scenario YAML (required)")
	workers := fs.Int("workers", 0, "override scenario worker count")
	fs.Parse(args)

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "simulate: -scenario is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Log.Level)

	sc, err := LoadScenario(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading scenario: %v\n", err)
		os.Exit(1)
	}
	if *workers > 0 {
		sc.Workers = *workers
	}

	// More than one worker needs the cross-context guard.
	if sc.Workers > 1 && !cfg.Guard.Enabled {
		slog.Info("enabling guard for concurrent scenario", "workers", sc.Workers)
		cfg.Guard.Enabled = true
	}

	rec, err := tracer.FromConfig(cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating recorder: %v\n", err)
		os.Exit(1)
	}

	dropped, err := simulate(rec, sc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		os.Exit(1)
	}

	printDigest(os.Stdout, rec, dropped)
}

// simulate drives the scenario through the recorder and returns how many
// reports were dropped due to guard contention.
func simulate(rec tracer.Recorder, sc *Scenario) (uint64, error) {
	if err := rec.Init(); err != nil {
		return 0, fmt.Errorf("initializing recorder: %w", err)
	}

	for i := range sc.Filters {
		src, min, err := sc.Filters[i].resolve()
		if err != nil {
			return 0, err
		}
		if err := rec.SetFilter(src, min); err != nil {
			return 0, fmt.Errorf("applying scenario filter: %w", err)
		}
	}

	if err := rec.RegisterObserver(tracer.ObserverFunc(func(sig event.Signature, sev event.Severity) {
		slog.Debug("event accepted", "signature", sig.String(), "severity", sev.Label())
	})); err != nil {
		return 0, fmt.Errorf("registering observer: %w", err)
	}

	if err := rec.Start(); err != nil {
		return 0, fmt.Errorf("starting recorder: %w", err)
	}

	workers := sc.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	dropped := make([]uint64, workers)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			// Round-robin the report list over the workers.
			for i := w; i < len(sc.Reports); i += workers {
				rep := &sc.Reports[i]
				class, _ := rep.class()
				sig, _ := rep.signature()
				for n := 0; n < rep.repeats(); n++ {
					if err := report(rec, class, sig); err != nil {
						if errors.Is(err, guard.ErrContended) {
							dropped[w]++
							continue
						}
						return err
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total uint64
	for _, d := range dropped {
		total += d
	}
	return total, nil
}

func report(rec tracer.Recorder, class event.Class, sig event.Signature) error {
	switch class {
	case event.ClassRuntime:
		return rec.ReportRuntimeError(sig.Source, sig.Instance, sig.Operation, sig.Condition)
	case event.ClassTransient:
		return rec.ReportTransientFault(sig.Source, sig.Instance, sig.Operation, sig.Condition)
	default:
		return rec.ReportError(sig.Source, sig.Instance, sig.Operation, sig.Condition)
	}
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
