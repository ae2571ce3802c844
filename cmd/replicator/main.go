// cmd/replicator/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/edaniels/golog"

	"github.com/tamzrod/tof-replicator/internal/config"
	"github.com/tamzrod/tof-replicator/internal/poller"
	"github.com/tamzrod/tof-replicator/internal/status"
	"github.com/tamzrod/tof-replicator/internal/writer"
)

func main() {
	debug := flag.Bool("debug", false, "development logging")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: replicator [-debug] <config.yaml>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger := golog.NewLogger("replicator")
	if *debug {
		logger = golog.NewDevelopmentLogger("replicator")
	}

	if err := run(flag.Arg(0), logger); err != nil {
		logger.Fatalw("replicator stopped", "error", err)
	}
}

func run(cfgPath string, logger golog.Logger) error {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		wg      sync.WaitGroup
		closers []func() error
	)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warnw("close failed", "error", err)
			}
		}
	}()

	// --------------------
	// Build per-unit pipelines
	// --------------------

	for _, unit := range cfg.Replicator.Units {
		log := logger.Named(unit.ID)

		// ---- poller ----
		built, err := poller.Build(unit, logger)
		if err != nil {
			return fmt.Errorf("poller build failed (unit=%s): %w", unit.ID, err)
		}
		closers = append(closers, built.Close)

		// ---- writer plan ----
		plan, err := writer.BuildPlan(cfg, unit)
		if err != nil {
			return fmt.Errorf("writer plan failed (unit=%s): %w", unit.ID, err)
		}

		// ---- writer clients (DATA + STATUS) ----
		clients, closeWriters, err := writer.BuildEndpointClients(unit, plan)
		if err != nil {
			return fmt.Errorf("writer clients failed (unit=%s): %w", unit.ID, err)
		}
		closers = append(closers, closeWriters)

		dataWriter := writer.New(plan, clients)
		statusWriter, statusEnabled := writer.NewDeviceStatusWriter(plan, clients)

		out := make(chan poller.PollResult)

		wg.Add(2)
		go func() {
			defer wg.Done()
			orchestrate(ctx, log, out, dataWriter, statusWriter, statusEnabled, built.ChipID)
		}()
		go func() {
			defer wg.Done()
			built.Poller.Run(ctx, out)
		}()

		log.Infow("unit started",
			"targets", len(plan.Targets),
			"status", statusEnabled,
			"interval_ms", unit.Poll.IntervalMs,
		)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	wg.Wait()
	return nil
}

// orchestrate owns one unit's status state: it delivers every poll result,
// folds it into the tracker, and advances seconds_in_error at 1 Hz.
func orchestrate(
	ctx context.Context,
	log golog.Logger,
	in <-chan poller.PollResult,
	dataWriter writer.Writer,
	statusWriter writer.StatusWriter,
	statusEnabled bool,
	chipID uint16,
) {
	tracker := status.NewTracker(chipID)

	writeStatus := func(what string) {
		if !statusEnabled {
			return
		}
		if err := statusWriter.WriteStatus(tracker.Snapshot()); err != nil {
			log.Warnw("status write failed", "on", what, "error", err)
		}
	}

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	// Full block write on start (identity re-assert) if enabled.
	writeStatus("start")

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			if res.Err != nil {
				log.Warnw("poll failed", "error", res.Err)
			} else if !res.Fresh() {
				log.Debugw("measurement rejected", "code", res.Code.String())
			}

			if err := dataWriter.Write(res); err != nil {
				log.Warnw("writer error", "error", err)
			}

			if tracker.Observe(res.Err, res.Code, res.Mode) {
				writeStatus("poll")
			}

		case <-secTicker.C:
			if tracker.Tick() {
				writeStatus("tick")
			}
		}
	}
}
