package export_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinedu-obi/medibill/internal/export"
	"github.com/chinedu-obi/medibill/internal/ledger"
)

type fakeLister struct {
	entries map[string][]*ledger.Entry
	err     error
}

func (f *fakeLister) ListByPatient(_ context.Context, patientID string, _ ledger.ListFilter) ([]*ledger.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.entries[patientID], nil
}

type fakeBalances struct {
	balances map[string]int64
}

func (f *fakeBalances) Balance(_ context.Context, patientID string) (int64, error) {
	return f.balances[patientID], nil
}

func TestService_Export(t *testing.T) {
	entries := map[string][]*ledger.Entry{
		"PT-1001": {
			{
				ID:          uuid.New(),
				PatientID:   "PT-1001",
				Type:        ledger.TypeTopup,
				Method:      ledger.MethodCash,
				Status:      ledger.StatusCompleted,
				Description: "Wallet top-up",
				Reference:   "TOP-20260315-001",
				Amount:      500000,
				CreatedAt:   time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
			},
			{
				ID:          uuid.New(),
				PatientID:   "PT-1001",
				Type:        ledger.TypePayment,
				Method:      ledger.MethodWallet,
				Status:      ledger.StatusCompleted,
				Description: "Payment for INV-2026-0042",
				Reference:   "PAY-INV-2026-0042-K7Q2",
				Amount:      120000,
				CreatedAt:   time.Date(2026, 3, 16, 14, 5, 0, 0, time.UTC),
			},
		},
	}

	svc := export.NewService(
		&fakeLister{entries: entries},
		&fakeBalances{balances: map[string]int64{"PT-1001": 380000}},
	)

	dir := t.TempDir()

	items, err := svc.Export(context.Background(), []string{"PT-1001", "PT-2002"}, ledger.ListFilter{}, dir)
	require.NoError(t, err)

	// PT-2002 has no activity and gets no file.
	require.Len(t, items, 1)
	assert.Equal(t, "PT-1001", items[0].PatientID)
	assert.Equal(t, int64(380000), items[0].Balance)
	assert.Equal(t, 2, items[0].Entries)

	content, err := os.ReadFile(items[0].FilePath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Type,Method,Status,Description,Reference,Amount (kobo)", lines[0])
	assert.Contains(t, lines[1], "TOP-20260315-001")
	assert.Contains(t, lines[1], "500000")
	assert.Contains(t, lines[2], "PAY-INV-2026-0042-K7Q2")
}

func TestService_Export_ListerError(t *testing.T) {
	svc := export.NewService(&fakeLister{err: errors.New("db down")}, &fakeBalances{})

	_, err := svc.Export(context.Background(), []string{"PT-1001"}, ledger.ListFilter{}, t.TempDir())
	assert.Error(t, err)
}

func TestEmailBody(t *testing.T) {
	items := []export.Item{
		{PatientID: "PT-1001", Balance: 380000, Entries: 2, FilePath: "/tmp/out/wallet-statement-PT-1001-2026-03-16.csv"},
	}

	body := export.EmailBody(items)

	assert.Contains(t, body, "PT-1001")
	assert.Contains(t, body, "2 entries")
	assert.Contains(t, body, "wallet-statement-PT-1001-2026-03-16.csv")
}
