package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/avolkov/moex-reporter/internal/app"
	"github.com/avolkov/moex-reporter/internal/common"
)

func main() {
	configPath := flag.String("config", "", "path to reporter.toml (optional)")
	schedule := flag.String("schedule", "", "cron expression; overrides config, empty = run once")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println(common.GetFullVersion())
		return
	}

	// Telegram credentials may live in a local .env during development
	_ = godotenv.Load()

	if *configPath == "" {
		*configPath = os.Getenv("REPORTER_CONFIG")
	}
	if *configPath == "" {
		*configPath = "config/reporter.toml"
	}

	a, err := app.New(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	if *schedule != "" {
		a.Config.Schedule = *schedule
	}

	common.PrintBanner(a.Config, a.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One-shot mode: generate a single report and exit
	if a.Config.Schedule == "" {
		if err := a.Run(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("Report run failed")
			os.Exit(1)
		}
		return
	}

	// Scheduled mode: run as a long-lived service
	scheduler, err := a.StartScheduler(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Failed to start scheduler")
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	common.PrintShutdownBanner(a.Logger)
	cancel()
	scheduler.Stop()
}
