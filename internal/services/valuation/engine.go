// Package valuation computes portfolio market value from quotes
package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/avolkov/moex-reporter/internal/models"
)

// Valuate computes the market value of each holding with a valid quote:
// value = price × lots × lot size. Holdings without a quote contribute
// nothing to the total and are recorded under Unavailable. Both slices
// preserve portfolio order.
func Valuate(portfolio *models.Portfolio, quotes map[string]*models.Quote) *models.Valuation {
	v := &models.Valuation{
		Positions:   make([]models.Position, 0, portfolio.Len()),
		TotalValue:  decimal.Zero,
		GeneratedAt: time.Now(),
	}

	for _, h := range portfolio.Holdings {
		quote, ok := quotes[h.Symbol]
		if !ok || !quote.Price.IsPositive() {
			v.Unavailable = append(v.Unavailable, h)
			continue
		}

		lotSize := quote.LotSize
		if lotSize <= 0 {
			lotSize = 1
		}

		value := quote.Price.
			Mul(decimal.NewFromInt(int64(h.Lots))).
			Mul(decimal.NewFromInt(int64(lotSize)))

		v.Positions = append(v.Positions, models.Position{
			Symbol:  h.Symbol,
			Lots:    h.Lots,
			Price:   quote.Price,
			LotSize: lotSize,
			Value:   value,
		})
		v.TotalValue = v.TotalValue.Add(value)
	}

	// Weights need the final total, so they are a second pass
	if v.TotalValue.IsPositive() {
		total := v.TotalValue.InexactFloat64()
		for i := range v.Positions {
			v.Positions[i].WeightPct = v.Positions[i].Value.InexactFloat64() / total * 100
		}
	}

	return v
}
