package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidSymbol marks a ticker that fails validation.
var ErrInvalidSymbol = errors.New("invalid symbol")

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,6}(\.[A-Z]{1,3})?$`)

// NormalizeSymbol uppercases a ticker, appends the ASX ".AX" suffix to bare
// alphabetic tickers of four letters or fewer, and validates the result.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidSymbol)
	}
	if len(s) <= 4 && !strings.Contains(s, ".") && isAlpha(s) {
		s += ".AX"
	}
	if !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return s, nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// displayNames covers the ASX tickers this tool is normally pointed at.
var displayNames = map[string]string{
	"AFI.AX": "Australian Foundation Investment Company",
	"CBA.AX": "Commonwealth Bank of Australia",
	"BHP.AX": "BHP Group",
	"CSL.AX": "CSL Limited",
	"WBC.AX": "Westpac Banking Corporation",
	"ANZ.AX": "ANZ Group Holdings",
	"NAB.AX": "National Australia Bank",
	"TLS.AX": "Telstra Group",
	"WES.AX": "Wesfarmers",
	"MQG.AX": "Macquarie Group",
}

// DisplayName returns a human-readable company name for known tickers and
// the symbol itself otherwise.
func DisplayName(symbol string) string {
	if name, ok := displayNames[symbol]; ok {
		return name
	}
	return symbol
}
