package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chinedu-obi/medibill/internal/ledger"
)

func entry(typ ledger.Type, method ledger.Method, status ledger.Status, amount int64) *ledger.Entry {
	return &ledger.Entry{Type: typ, Method: method, Status: status, Amount: amount}
}

func TestPaidSoFar(t *testing.T) {
	tests := []struct {
		name    string
		entries []*ledger.Entry
		want    int64
	}{
		{"Empty", nil, 0},
		{
			"PaymentsSum",
			[]*ledger.Entry{
				entry(ledger.TypePayment, ledger.MethodCash, ledger.StatusCompleted, 12000),
				entry(ledger.TypePayment, ledger.MethodTransfer, ledger.StatusCompleted, 8000),
			},
			20000,
		},
		{
			"RefundsSubtract",
			[]*ledger.Entry{
				entry(ledger.TypePayment, ledger.MethodCash, ledger.StatusCompleted, 20000),
				entry(ledger.TypeRefund, ledger.MethodWallet, ledger.StatusCompleted, 5000),
			},
			15000,
		},
		{
			"PendingAndFailedIgnored",
			[]*ledger.Entry{
				entry(ledger.TypePayment, ledger.MethodTransfer, ledger.StatusPending, 9000),
				entry(ledger.TypePayment, ledger.MethodTransfer, ledger.StatusFailed, 7000),
				entry(ledger.TypePayment, ledger.MethodCash, ledger.StatusCompleted, 1000),
			},
			1000,
		},
		{
			"TopupsDoNotCount",
			[]*ledger.Entry{
				entry(ledger.TypeTopup, ledger.MethodCash, ledger.StatusCompleted, 5000),
			},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.PaidSoFar(tt.entries))
		})
	}
}

func TestWalletBalance(t *testing.T) {
	tests := []struct {
		name    string
		entries []*ledger.Entry
		want    int64
	}{
		{"Empty", nil, 0},
		{
			"TopupsAndRefundsCredit",
			[]*ledger.Entry{
				entry(ledger.TypeTopup, ledger.MethodCash, ledger.StatusCompleted, 10000),
				entry(ledger.TypeRefund, ledger.MethodWallet, ledger.StatusCompleted, 2500),
			},
			12500,
		},
		{
			"OnlyWalletPaymentsDebit",
			[]*ledger.Entry{
				entry(ledger.TypeTopup, ledger.MethodCash, ledger.StatusCompleted, 10000),
				entry(ledger.TypePayment, ledger.MethodWallet, ledger.StatusCompleted, 4000),
				entry(ledger.TypePayment, ledger.MethodCash, ledger.StatusCompleted, 3000),
			},
			6000,
		},
		{
			"IncompleteEntriesIgnored",
			[]*ledger.Entry{
				entry(ledger.TypeTopup, ledger.MethodCash, ledger.StatusPending, 10000),
				entry(ledger.TypePayment, ledger.MethodWallet, ledger.StatusFailed, 4000),
			},
			0,
		},
		{
			"CanGoNegativeWithinCredit",
			[]*ledger.Entry{
				entry(ledger.TypePayment, ledger.MethodWallet, ledger.StatusCompleted, 1500),
			},
			-1500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.WalletBalance(tt.entries))
		})
	}
}
