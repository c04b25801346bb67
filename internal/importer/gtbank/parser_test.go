package gtbank

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinedu-obi/medibill/internal/reconcile"
)

const internetBankingCSV = `GUARANTY TRUST BANK PLC
Account Statement,,,,,
Account Number: 0123456789,,,,,

Transaction Date,Narration,Reference,Debit,Credit,Balance
15-Mar-2026,TRF FROM ADEBAYO OKON,TRF-889123,,"20,000.00","120,000.00"
16-Mar-2026,POS PURCHASE SHOPRITE,POS-114421,"5,250.50",,"114,749.50"
17-Mar-2026,TRF FROM NGOZI EZE,PAY-INV-2026-0042-K7Q2,,"8,000.00","122,749.50"

Closing Balance,,,,"122,749.50",
`

const accountHistoryCSV = `Trans. Date,Remarks,Reference No,Debits,Credits
01/04/2026,CASH DEPOSIT LAGOS BRANCH,DEP-00917,,15000.00
02/04/2026,CHEQUE CLEARING,CHQ-5521,2500.00,
`

func TestParser_InternetBankingExport(t *testing.T) {
	lines, err := NewParser().Parse(strings.NewReader(internetBankingCSV))
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), lines[0].Date)
	assert.Equal(t, "TRF FROM ADEBAYO OKON", lines[0].Description)
	assert.Equal(t, "TRF-889123", lines[0].Reference)
	assert.Equal(t, int64(2000000), lines[0].Amount)
	assert.Equal(t, reconcile.DirectionCredit, lines[0].Direction)

	assert.Equal(t, int64(525050), lines[1].Amount)
	assert.Equal(t, reconcile.DirectionDebit, lines[1].Direction)

	assert.Equal(t, "PAY-INV-2026-0042-K7Q2", lines[2].Reference)
}

func TestParser_AccountHistoryExport(t *testing.T) {
	lines, err := NewParser().Parse(strings.NewReader(accountHistoryCSV))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), lines[0].Date)
	assert.Equal(t, int64(1500000), lines[0].Amount)
	assert.Equal(t, reconcile.DirectionCredit, lines[0].Direction)
	assert.Equal(t, reconcile.DirectionDebit, lines[1].Direction)
}

func TestParser_NoMatchingFormat(t *testing.T) {
	_, err := NewParser().Parse(strings.NewReader("Date,Amount\n2026-01-01,500\n"))
	assert.Error(t, err)
}

func TestParser_ISODatesAccepted(t *testing.T) {
	csv := `Transaction Date,Narration,Reference,Debit,Credit
2026-05-10,TRF FROM BELLO,TRF-1,,1000.00
`

	lines, err := NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), lines[0].Date)
}

func TestParseNairaAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "PlainDecimal", input: "1,234.56", want: 123456},
		{name: "NoFraction", input: "500", want: 50000},
		{name: "NGNPrefix", input: "NGN 20,000.00", want: 2000000},
		{name: "NairaSign", input: "₦750.25", want: 75025},
		{name: "Negative", input: "-100.00", want: -10000},
		{name: "Garbage", input: "N/A", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNairaAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
