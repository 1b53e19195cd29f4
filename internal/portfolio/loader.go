// Package portfolio loads the held-lots portfolio file
package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/avolkov/moex-reporter/internal/models"
)

// Default returns the fallback portfolio used when the portfolio file is
// missing, malformed, or contains no valid entries.
func Default() *models.Portfolio {
	return &models.Portfolio{
		Holdings: []models.Holding{
			{Symbol: "SBER", Lots: 10},
			{Symbol: "GAZP", Lots: 5},
			{Symbol: "VTBR", Lots: 1000},
			{Symbol: "SPBE", Lots: 2},
		},
	}
}

// Diagnostic explains why a load fell back to the default portfolio or
// dropped entries. Nil means a fully clean load.
type Diagnostic struct {
	Reason      string // human-readable failure reason
	Err         error  // underlying error, when any
	Dropped     int    // entries rejected during validation
	UsedDefault bool
}

func (d *Diagnostic) String() string {
	if d == nil {
		return ""
	}
	if d.Err != nil {
		return fmt.Sprintf("%s: %v", d.Reason, d.Err)
	}
	return d.Reason
}

// Load reads a symbol→lots JSON object from path and validates it.
// Load never fails: any structural problem falls back to the default
// portfolio, with the reason returned as a diagnostic. Entries with an
// empty key or a non-positive lot count are dropped individually.
// Symbols are sorted for deterministic report order.
func Load(path string) (*models.Portfolio, *Diagnostic) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), &Diagnostic{
			Reason:      fmt.Sprintf("portfolio file %s unreadable", path),
			Err:         err,
			UsedDefault: true,
		}
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Default(), &Diagnostic{
			Reason:      fmt.Sprintf("portfolio file %s is not a JSON object", path),
			Err:         err,
			UsedDefault: true,
		}
	}

	holdings := make([]models.Holding, 0, len(raw))
	dropped := 0
	for symbol, value := range raw {
		lots, ok := coerceLots(value)
		if strings.TrimSpace(symbol) == "" || !ok {
			dropped++
			continue
		}
		holdings = append(holdings, models.Holding{Symbol: symbol, Lots: lots})
	}

	if len(holdings) == 0 {
		return Default(), &Diagnostic{
			Reason:      fmt.Sprintf("portfolio file %s has no valid entries", path),
			Dropped:     dropped,
			UsedDefault: true,
		}
	}

	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Symbol < holdings[j].Symbol
	})

	if dropped > 0 {
		return &models.Portfolio{Holdings: holdings}, &Diagnostic{
			Reason:  fmt.Sprintf("dropped %d invalid portfolio entries", dropped),
			Dropped: dropped,
		}
	}

	return &models.Portfolio{Holdings: holdings}, nil
}

// coerceLots converts a JSON value to a positive integer lot count.
func coerceLots(value any) (int, bool) {
	num, ok := value.(float64)
	if !ok {
		return 0, false
	}
	lots := int(num)
	if lots <= 0 {
		return 0, false
	}
	return lots, true
}
