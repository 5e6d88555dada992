package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const (
	exitOK            = 0
	exitFailure       = 1
	exitConfigMissing = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code. opts are applied to every logger it
// builds.
func run(args []string, opts ...zap.Option) int {
	var configFilePath string
	fs := flag.NewFlagSet("cowin", flag.ContinueOnError)
	fs.StringVar(&configFilePath, "config-file", "./config.yaml", "path of the config.yaml file")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	log, level, err := newLogger("console", opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	defer func() { _ = log.Sync() }()

	log.Info(fmt.Sprintf("Loading %s as configuration", configFilePath))
	cfg, err := loadConfig(configFilePath)
	if errors.Is(err, ErrConfigMissing) {
		log.Error(fmt.Sprintf("%s missing from cwd.", configFilePath), zap.Error(err))
		return exitConfigMissing
	}
	if err != nil {
		log.Error("failed to load configuration", zap.Error(err))
		return exitFailure
	}

	if cfg.LogFormat == "json" {
		_ = log.Sync()
		if log, level, err = newLogger(cfg.LogFormat, opts...); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFailure
		}
	}
	lvl, _ := parseLevel(cfg.LogLevel)
	level.SetLevel(lvl)
	logConfig(log, cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := newMetrics(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := serveMetrics(ctx, cfg.MetricsAddr, reg, log); err != nil {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	poller := newPoller(cfg, log, metrics)
	scheduler, err := startScheduler(ctx, poller)
	if err != nil {
		log.Error("failed to start poller", zap.Error(err))
		return exitFailure
	}
	log.Info("poller started",
		zap.Strings("pin_codes", cfg.PinCodes),
		zap.Int("check_for_next_days", cfg.CheckForNextDays),
		zap.Int("minimum_age", cfg.MinimumAge),
		zap.Int("polling_interval", cfg.PollingInterval))

	<-ctx.Done()
	scheduler.Stop()
	log.Info("Exiting...")
	return exitOK
}
