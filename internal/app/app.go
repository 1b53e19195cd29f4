// Package app wires configuration, clients, and services together
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/moex-reporter/internal/clients/moex"
	"github.com/avolkov/moex-reporter/internal/clients/telegram"
	"github.com/avolkov/moex-reporter/internal/common"
	"github.com/avolkov/moex-reporter/internal/interfaces"
	"github.com/avolkov/moex-reporter/internal/portfolio"
	"github.com/avolkov/moex-reporter/internal/services/market"
	"github.com/avolkov/moex-reporter/internal/services/report"
	"github.com/avolkov/moex-reporter/internal/services/valuation"
)

// App holds all initialized clients and services for the reporter.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	MarketService interfaces.MarketService
	Sink          *report.Sink
	StartupTime   time.Time
}

// New initializes config, logger, clients, and services.
// configPath may be empty, in which case defaults and environment
// variables drive the configuration.
func New(configPath string) (*App, error) {
	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	moexClient := moex.NewClient(
		moex.WithBaseURL(config.Clients.MOEX.BaseURL),
		moex.WithBoard(config.Clients.MOEX.Board),
		moex.WithTimeout(config.Clients.MOEX.GetTimeout()),
		moex.WithRateLimit(config.Clients.MOEX.RateLimit),
		moex.WithLogger(logger),
	)

	// The cache is owned here, not by the fetcher: one-shot runs get a
	// fresh cache per process, the scheduled service reuses it across
	// runs so the TTL is actually reachable.
	cache := market.NewCache(config.Clients.MOEX.GetCacheTTL())

	marketService := market.NewService(moexClient, cache, logger,
		market.WithAttempts(config.Clients.MOEX.Retries),
		market.WithRetryPause(config.Clients.MOEX.GetRetryPause()),
		market.WithRateLimit(config.Clients.MOEX.RateLimit),
	)

	var notifier interfaces.Notifier
	if config.Clients.Telegram.Enabled() {
		notifier = telegram.NewClient(
			config.Clients.Telegram.BotToken,
			config.Clients.Telegram.ChatID,
			telegram.WithBaseURL(config.Clients.Telegram.BaseURL),
			telegram.WithTimeout(config.Clients.Telegram.GetTimeout()),
			telegram.WithLogger(logger),
		)
	}

	sink := report.NewSink(config.Reports.Dir, notifier, logger)

	return &App{
		Config:        config,
		Logger:        logger,
		MarketService: marketService,
		Sink:          sink,
		StartupTime:   time.Now(),
	}, nil
}

// Run executes one full report pass: load portfolio, collect quotes,
// valuate, format, persist, notify. Only persistence failure (or config
// load at startup) fails the run.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()
	logger := &common.Logger{Logger: a.Logger.With().Str("run_id", uuid.NewString()).Logger()}

	p, diag := portfolio.Load(a.Config.Portfolio.Path)
	if diag != nil {
		if diag.UsedDefault {
			logger.Warn().Str("reason", diag.String()).Msg("Using default portfolio")
		} else {
			logger.Warn().Str("reason", diag.String()).Msg("Portfolio loaded with dropped entries")
		}
	}

	quotes := a.MarketService.Collect(ctx, p)

	v := valuation.Valuate(p, quotes)
	body := report.Format(p, v)

	path, err := a.Sink.Persist(body)
	if err != nil {
		return err
	}

	a.Sink.Notify(ctx, body)

	logger.Info().
		Str("path", path).
		Int("holdings", p.Len()).
		Int("positions", len(v.Positions)).
		Int("unavailable", len(v.Unavailable)).
		Str("total", v.TotalValue.Round(0).String()).
		Dur("elapsed", time.Since(start)).
		Msg("Report run complete")

	return nil
}
