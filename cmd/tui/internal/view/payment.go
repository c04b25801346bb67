package view

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/chinedu-obi/medibill/internal/invoice"
	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/payment"
)

// PaymentModel walks the cashier through the desk payment steps:
// pick a method, enter the method's details, confirm. The flow state
// machine rejects going back once the payment is confirmed.
type PaymentModel struct {
	CommonModel
	payments    *payment.Service
	invoice     *invoice.Invoice
	outstanding int64
	cashierName string

	flow *payment.Flow
	form *huh.Form

	processing bool
	receipt    *payment.Receipt
	err        error

	// Form bindings
	formMethod    string
	formAmount    string
	formBank      string
	formReference string
	formConfirmed bool
}

// PaymentDoneMsg is emitted when the flow finishes or is dismissed.
type PaymentDoneMsg struct {
	Receipt *payment.Receipt
}

type paymentResultMsg struct {
	receipt *payment.Receipt
	err     error
}

func NewPaymentModel(payments *payment.Service, inv *invoice.Invoice, outstanding int64, cashierName string) PaymentModel {
	m := PaymentModel{
		payments:    payments,
		invoice:     inv,
		outstanding: outstanding,
		cashierName: cashierName,
		flow:        payment.NewFlow(),
		formAmount:  strconv.FormatInt(outstanding, 10),
	}

	m.form = m.methodForm()

	return m
}

func (m PaymentModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m PaymentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case paymentResultMsg:
		m.processing = false
		m.receipt = msg.receipt
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if m.receipt != nil || m.err != nil {
			return m, func() tea.Msg { return PaymentDoneMsg{Receipt: m.receipt} }
		}

		if msg.Type == tea.KeyEsc && !m.processing {
			switch m.flow.Step() {
			case payment.StepMethodSelection:
				return m, func() tea.Msg { return PaymentDoneMsg{} }
			case payment.StepDetailEntry:
				if err := m.flow.Back(); err == nil {
					m.form = m.methodForm()
					return m, m.form.Init()
				}
			}

			return m, nil
		}
	}

	if m.processing || m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	switch m.flow.Step() {
	case payment.StepMethodSelection:
		if err := m.flow.Select(ledger.Method(m.formMethod)); err != nil {
			m.err = err
			return m, nil
		}

		m.form = m.detailForm()

		return m, m.form.Init()

	case payment.StepDetailEntry:
		if !m.formConfirmed {
			return m, func() tea.Msg { return PaymentDoneMsg{} }
		}

		if err := m.flow.Confirm(); err != nil {
			m.err = err
			return m, nil
		}

		m.processing = true

		return m, m.processCmd()
	}

	return m, cmd
}

func (m PaymentModel) methodForm() *huh.Form {
	options := make([]huh.Option[string], 0, len(ledger.Methods))
	for _, method := range ledger.Methods {
		options = append(options, huh.NewOption(methodLabel(method), string(method)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("method").
				Title("Payment Method").
				Options(options...).
				Value(&m.formMethod),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m PaymentModel) detailForm() *huh.Form {
	method := m.flow.Method()

	fields := []huh.Field{
		huh.NewInput().
			Key("amount").
			Title("Amount (kobo)").
			Value(&m.formAmount).
			Validate(func(s string) error {
				n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
				if err != nil {
					return fmt.Errorf("enter a whole number of kobo")
				}

				if n <= 0 {
					return fmt.Errorf("amount must be positive")
				}

				if n > m.outstanding {
					return fmt.Errorf("outstanding balance is %s", FormatNaira(m.outstanding))
				}

				return nil
			}),
	}

	if method == ledger.MethodTransfer {
		bankOptions := make([]huh.Option[string], 0, len(payment.Banks))
		for _, bank := range payment.Banks {
			bankOptions = append(bankOptions, huh.NewOption(bank, bank))
		}

		fields = append(fields,
			huh.NewSelect[string]().
				Key("bank").
				Title("Bank").
				Options(bankOptions...).
				Value(&m.formBank),
			huh.NewInput().
				Key("reference").
				Title("Transfer Reference").
				Value(&m.formReference).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("transfer reference is required")
					}

					return nil
				}),
		)
	}

	fields = append(fields,
		huh.NewConfirm().
			Key("confirm").
			Title(fmt.Sprintf("Take payment for %s?", m.invoice.Number)).
			Affirmative("Confirm").
			Negative("Cancel").
			Value(&m.formConfirmed),
	)

	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)
}

func methodLabel(method ledger.Method) string {
	switch method {
	case ledger.MethodCash:
		return "Cash"
	case ledger.MethodTransfer:
		return "Bank Transfer"
	case ledger.MethodWallet:
		return "Wallet"
	case ledger.MethodCard:
		return "Card"
	}

	return string(method)
}

func (m PaymentModel) processCmd() tea.Cmd {
	amount, _ := strconv.ParseInt(strings.TrimSpace(m.formAmount), 10, 64)
	method := m.flow.Method()
	details := payment.Details{
		Bank:        m.formBank,
		Reference:   strings.TrimSpace(m.formReference),
		CashierName: m.cashierName,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		receipt, err := m.payments.ProcessPayment(ctx, m.invoice.ID, amount, method, details)

		return paymentResultMsg{receipt: receipt, err: err}
	}
}

func (m PaymentModel) View() string {
	panel := lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(52)

	header := fmt.Sprintf("Pay %s (%s)\nOutstanding: %s\n",
		m.invoice.Number, m.invoice.PatientName, FormatNaira(m.outstanding))

	switch {
	case m.processing:
		return panel.Render(header + "\nProcessing payment...")
	case m.err != nil:
		return panel.Render(header + fmt.Sprintf("\nPayment failed: %v\n\nPress any key to continue", m.err))
	case m.receipt != nil:
		return panel.Render(header + fmt.Sprintf(
			"\nPayment recorded\nReference: %s\nAmount: %s\n\nPress any key to continue",
			m.receipt.Reference, FormatNaira(m.receipt.Amount)))
	default:
		return panel.Render(header + "\n" + m.form.View())
	}
}
