package view

import (
	"fmt"
	"strings"
	"time"
)

// FormatNaira formats an amount stored as kobo into a naira string
// with thousands separators, e.g. 2000000 -> "₦20,000.00".
func FormatNaira(kobo int64) string {
	negative := kobo < 0
	if negative {
		kobo = -kobo
	}

	naira := kobo / 100
	fraction := kobo % 100

	digits := fmt.Sprintf("%d", naira)

	var b strings.Builder

	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(d)
	}

	sign := ""
	if negative {
		sign = "-"
	}

	return fmt.Sprintf("%s₦%s.%02d", sign, b.String(), fraction)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
