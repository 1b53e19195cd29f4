// Package models defines data structures for the reporter
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a single portfolio entry: a ticker symbol and the number of
// lots held. Lots is always positive after validation.
type Holding struct {
	Symbol string `json:"symbol"`
	Lots   int    `json:"lots"`
}

// Portfolio is an ordered set of holdings. The order is preserved through
// valuation and report formatting. Immutable after load.
type Portfolio struct {
	Holdings []Holding `json:"holdings"`
}

// Symbols returns the ticker symbols in portfolio order.
func (p *Portfolio) Symbols() []string {
	symbols := make([]string, len(p.Holdings))
	for i, h := range p.Holdings {
		symbols[i] = h.Symbol
	}
	return symbols
}

// Len returns the number of holdings.
func (p *Portfolio) Len() int {
	return len(p.Holdings)
}

// Position is a valued holding: lots × lot size × price.
type Position struct {
	Symbol    string          `json:"symbol"`
	Lots      int             `json:"lots"`
	Price     decimal.Decimal `json:"price"`
	LotSize   int             `json:"lot_size"`
	Value     decimal.Decimal `json:"value"`
	WeightPct float64         `json:"weight_pct"` // share of total value, 0 when total is 0
}

// Valuation is the computed portfolio valuation. Positions and Unavailable
// both preserve portfolio order; a symbol appears in exactly one of them.
type Valuation struct {
	Positions   []Position      `json:"positions"`
	TotalValue  decimal.Decimal `json:"total_value"`
	Unavailable []Holding       `json:"unavailable"` // holdings with no valid quote
	GeneratedAt time.Time       `json:"generated_at"`
}
