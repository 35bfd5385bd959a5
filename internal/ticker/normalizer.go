package ticker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxTickers is the most symbols a single submission may carry.
const MaxTickers = 10

var (
	// ErrNoValidTickers means nothing in the input survived validation.
	ErrNoValidTickers = errors.New("no valid ticker symbols")

	// ErrTooManyTickers means the request exceeded MaxTickers valid symbols.
	ErrTooManyTickers = fmt.Errorf("too many ticker symbols (max %d)", MaxTickers)

	symbolPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)
)

// Normalize uppercases, trims and validates a list of candidate symbols.
// Invalid entries are dropped silently; order and duplicates are kept.
// An empty survivor set or one larger than MaxTickers fails the whole
// submission.
func Normalize(candidates []string) ([]string, error) {
	out := make([]string, 0, len(candidates))

	for _, raw := range candidates {
		sym := strings.ToUpper(strings.TrimSpace(raw))
		if !symbolPattern.MatchString(sym) {
			continue
		}
		out = append(out, sym)
	}

	if len(out) == 0 {
		return nil, ErrNoValidTickers
	}
	if len(out) > MaxTickers {
		return nil, ErrTooManyTickers
	}
	return out, nil
}

// NormalizeText splits a free-form comma separated string and normalizes
// the pieces.
func NormalizeText(text string) ([]string, error) {
	return Normalize(strings.Split(text, ","))
}
