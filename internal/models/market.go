// Package models defines data structures for the reporter
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteSourceMOEX tags quotes fetched from the MOEX ISS API.
const QuoteSourceMOEX = "MOEX"

// Quote is a per-symbol market data snapshot
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`    // always positive
	LotSize   int             `json:"lot_size"` // exchange lot size, defaults to 1
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
}
