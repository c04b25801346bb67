package payment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/payment"
)

func TestFlow_HappyPath(t *testing.T) {
	flow := payment.NewFlow()
	assert.Equal(t, payment.StepMethodSelection, flow.Step())

	require.NoError(t, flow.Select(ledger.MethodTransfer))
	assert.Equal(t, payment.StepDetailEntry, flow.Step())
	assert.Equal(t, ledger.MethodTransfer, flow.Method())

	require.NoError(t, flow.Confirm())
	assert.Equal(t, payment.StepConfirmed, flow.Step())
}

func TestFlow_BackFromDetailEntry(t *testing.T) {
	flow := payment.NewFlow()
	require.NoError(t, flow.Select(ledger.MethodCash))

	require.NoError(t, flow.Back())
	assert.Equal(t, payment.StepMethodSelection, flow.Step())

	// Selecting again picks up the new method.
	require.NoError(t, flow.Select(ledger.MethodCard))
	assert.Equal(t, ledger.MethodCard, flow.Method())
}

func TestFlow_ConfirmRequiresMethod(t *testing.T) {
	flow := payment.NewFlow()

	err := flow.Confirm()
	assert.ErrorIs(t, err, payment.ErrNoMethodSelected)
}

func TestFlow_ConfirmedIsTerminal(t *testing.T) {
	flow := payment.NewFlow()
	require.NoError(t, flow.Select(ledger.MethodCash))
	require.NoError(t, flow.Confirm())

	assert.ErrorIs(t, flow.Select(ledger.MethodCard), payment.ErrFlowConfirmed)
	assert.ErrorIs(t, flow.Back(), payment.ErrFlowConfirmed)
	assert.ErrorIs(t, flow.Confirm(), payment.ErrFlowConfirmed)
}

func TestKnownBank(t *testing.T) {
	assert.True(t, payment.KnownBank("GTBank"))
	assert.False(t, payment.KnownBank("Bank of Nowhere"))
}
