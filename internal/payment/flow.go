package payment

import (
	"errors"

	"github.com/chinedu-obi/medibill/internal/ledger"
)

// Step is the position in the desk payment workflow.
type Step int

const (
	StepMethodSelection Step = iota
	StepDetailEntry
	StepConfirmed
)

var (
	ErrNoMethodSelected = errors.New("no payment method selected")
	ErrFlowConfirmed    = errors.New("payment flow already confirmed")
)

// Flow models the cashier workflow: method selection, then detail
// entry, then confirmation. Confirmation is terminal; the cashier can
// step back from detail entry but never unwind a confirmed payment.
type Flow struct {
	step   Step
	method ledger.Method
}

func NewFlow() *Flow {
	return &Flow{step: StepMethodSelection}
}

func (f *Flow) Step() Step            { return f.step }
func (f *Flow) Method() ledger.Method { return f.method }

// Select picks the payment method and advances to detail entry.
func (f *Flow) Select(method ledger.Method) error {
	if f.step == StepConfirmed {
		return ErrFlowConfirmed
	}

	f.method = method
	f.step = StepDetailEntry

	return nil
}

// Back returns from detail entry to method selection.
func (f *Flow) Back() error {
	switch f.step {
	case StepConfirmed:
		return ErrFlowConfirmed
	case StepDetailEntry:
		f.step = StepMethodSelection
	}

	return nil
}

// Confirm finalizes the flow. The ledger write happens only after this.
func (f *Flow) Confirm() error {
	switch f.step {
	case StepConfirmed:
		return ErrFlowConfirmed
	case StepMethodSelection:
		return ErrNoMethodSelected
	}

	f.step = StepConfirmed

	return nil
}
