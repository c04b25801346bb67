package gtbank

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/chinedu-obi/medibill/internal/encoding"
	"github.com/chinedu-obi/medibill/internal/reconcile"
)

// Parser reads GTBank CSV statement exports and produces statement
// lines. It auto-detects which export format is in use by matching
// column headers against known profiles; banner and footer rows above
// and below the table are skipped.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]reconcile.StatementLine, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching GTBank statement format found")
	}

	return parseRows(profile, cols, rows[headerIdx+1:])
}

type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(p *Profile, cols colIndex, rows [][]string) ([]reconcile.StatementLine, error) {
	var lines []reconcile.StatementLine

	for _, row := range rows {
		date, ok := parseDate(p, row, cols[p.DateCol])
		if !ok {
			// Footer rows (balances, totals) have no parseable date.
			continue
		}

		amount, direction, ok := parseAmount(row, cols[p.DebitCol], cols[p.CreditCol])
		if !ok {
			continue
		}

		lines = append(lines, reconcile.StatementLine{
			Date:        date,
			Description: cellValue(row, cols[p.DescCol]),
			Reference:   cellValue(row, cols[p.RefCol]),
			Amount:      amount,
			Direction:   direction,
		})
	}

	return lines, nil
}

func parseDate(p *Profile, row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	for _, format := range p.DateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseAmount(row []string, debitIdx, creditIdx int) (int64, reconcile.Direction, bool) {
	if s := cellValue(row, debitIdx); s != "" {
		kobo, err := parseNairaAmount(s)
		if err == nil && kobo != 0 {
			return abs(kobo), reconcile.DirectionDebit, true
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		kobo, err := parseNairaAmount(s)
		if err == nil && kobo != 0 {
			return abs(kobo), reconcile.DirectionCredit, true
		}
	}

	return 0, "", false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
