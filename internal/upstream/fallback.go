package upstream

import (
	"fmt"
	"strings"

	"RoastGate/internal/domain/models"
)

const fallbackScore = 50

// BuildFallback synthesizes a structurally complete roast when the
// upstream is unreachable. Every submitted ticker gets an assessment so
// clients never hit missing keys.
func BuildFallback(tickers []string) *models.RoastResult {
	score := fallbackScore
	result := &models.RoastResult{
		Roast: fmt.Sprintf(
			"Our analysts are currently unavailable, probably busy panic-selling. "+
				"Your picks (%s) are noted, and honestly, that portfolio roasts itself.",
			strings.Join(tickers, ", ")),
		Score:  &score,
		Stocks: make(map[string]*models.StockAssessment, len(tickers)),
	}

	for _, sym := range tickers {
		result.Stocks[sym] = &models.StockAssessment{
			Company: sym,
			Pros:    []string{"Analysis temporarily unavailable"},
			Cons:    []string{"Could not reach the analysis service"},
		}
	}
	return result
}
