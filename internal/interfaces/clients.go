// Package interfaces defines service contracts for the reporter
package interfaces

import (
	"context"

	"github.com/avolkov/moex-reporter/internal/models"
)

// MarketDataClient provides access to an exchange market data API
type MarketDataClient interface {
	// GetQuote retrieves the current quote for a ticker symbol
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// Notifier delivers a finished report to an external messaging channel
type Notifier interface {
	// SendReport posts a report body, truncating as required by the channel
	SendReport(ctx context.Context, report string) error
}

// MarketService collects quotes for a whole portfolio
type MarketService interface {
	// Collect fetches quotes for every portfolio symbol. Symbols without a
	// valid quote are simply absent from the result.
	Collect(ctx context.Context, portfolio *models.Portfolio) map[string]*models.Quote
}
