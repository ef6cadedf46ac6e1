package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parsePrice reads a price as written in Argentine and European spreadsheets
// ("1.234,56"), as a plain dot decimal ("1234.56") or with comma thousands
// ("1,234.56"). A leading "$" and spaces are ignored. Whichever of '.' and ','
// comes last is the decimal separator. A lone comma is always decimal.
func parsePrice(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, " ", "")

	if clean == "" {
		return decimal.Decimal{}, fmt.Errorf("empty price")
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case lastDot > lastComma && lastComma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case strings.Count(clean, ".") > 1:
		// "1.234.567" only has thousands separators.
		clean = strings.ReplaceAll(clean, ".", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q", s)
	}

	return d, nil
}
