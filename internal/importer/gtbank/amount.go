package gtbank

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseNairaAmount parses a statement amount string into kobo.
// Format examples: "1,234.56" -> 123456, "20,000.00" -> 2000000,
// "500" -> 50000. A leading naira sign or stray spaces are tolerated.
func parseNairaAmount(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "NGN")
	clean = strings.TrimPrefix(clean, "₦")
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimSpace(clean)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
