package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/payment"
	"github.com/chinedu-obi/medibill/internal/wallet"
)

type walletState int

const (
	walletStateSearch walletState = iota
	walletStateAccount
	walletStateTopup
)

type WalletModel struct {
	CommonModel
	walletService  *wallet.Service
	paymentService *payment.Service
	ledgerService  *ledger.Service
	cashierName    string

	state   walletState
	search  textinput.Model
	form    *huh.Form
	account *wallet.Account
	recent  []*ledger.Entry

	loading bool
	err     error
	status  string

	// Form bindings
	formAmount string
	formMethod string
}

func NewWalletModel(walletSvc *wallet.Service, paymentSvc *payment.Service, ledgerSvc *ledger.Service, cashierName string) WalletModel {
	search := textinput.New()
	search.Placeholder = "Patient ID"
	search.Focus()
	search.CharLimit = 64
	search.Width = 40

	return WalletModel{
		walletService:  walletSvc,
		paymentService: paymentSvc,
		ledgerService:  ledgerSvc,
		cashierName:    cashierName,
		search:         search,
	}
}

func (m WalletModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m WalletModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAccountMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.state = walletStateSearch

			return m, nil
		}

		m.account = msg.account
		m.recent = msg.recent
		m.state = walletStateAccount
		m.err = nil

		return m, nil

	case topupResultMsg:
		m.loading = false
		m.state = walletStateAccount
		m.form = nil

		if msg.err != nil {
			m.status = fmt.Sprintf("Top-up failed: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Top-up of %s recorded (%s)", FormatNaira(msg.receipt.Amount), msg.receipt.Reference)

		return m, m.loadAccountCmd(m.account.PatientID)
	}

	switch m.state {
	case walletStateSearch:
		return m.updateSearch(msg)
	case walletStateAccount:
		return m.updateAccount(msg)
	case walletStateTopup:
		return m.updateTopup(msg)
	}

	return m, nil
}

func (m WalletModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyEnter:
			patientID := strings.TrimSpace(m.search.Value())
			if patientID == "" {
				return m, nil
			}

			m.loading = true

			return m, m.loadAccountCmd(patientID)
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m WalletModel) updateAccount(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.state = walletStateSearch
		m.account = nil
		m.status = ""
		m.search.SetValue("")
		m.search.Focus()

		return m, textinput.Blink
	case "t":
		m.formAmount = ""
		m.formMethod = string(ledger.MethodCash)
		m.form = m.topupForm()
		m.state = walletStateTopup

		return m, m.form.Init()
	case "r":
		m.loading = true
		return m, m.loadAccountCmd(m.account.PatientID)
	}

	return m, nil
}

func (m WalletModel) topupForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Top-up Amount (kobo)").
				Value(&m.formAmount).
				Validate(func(s string) error {
					n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
					if err != nil || n <= 0 {
						return fmt.Errorf("enter a positive whole number of kobo")
					}

					return nil
				}),
			huh.NewSelect[string]().
				Key("method").
				Title("Method").
				Options(
					huh.NewOption("Cash", string(ledger.MethodCash)),
					huh.NewOption("Card", string(ledger.MethodCard)),
				).
				Value(&m.formMethod),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m WalletModel) updateTopup(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = walletStateAccount
			m.form = nil

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.loading = true

	return m, m.topupCmd()
}

func (m WalletModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Working...")
	}

	switch m.state {
	case walletStateSearch:
		content := "Wallet Lookup\n\n" + m.search.View()
		if m.err != nil {
			content += "\n\n" + fmt.Sprintf("Error: %v", m.err)
		}

		content += "\n\n" + lipgloss.NewStyle().Faint(true).Render("Enter: lookup | Esc: back")

		return lipgloss.NewStyle().Padding(1, 2).Render(content)

	case walletStateTopup:
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(50)

		return panel.Render(fmt.Sprintf("Top Up Wallet: %s\n\n%s", m.account.PatientID, m.form.View()))

	default:
		var b strings.Builder

		fmt.Fprintf(&b, "Wallet: %s\n\n", m.account.PatientID)
		fmt.Fprintf(&b, "Balance:      %s\n", FormatNaira(m.account.Balance))
		fmt.Fprintf(&b, "Credit Limit: %s\n\n", FormatNaira(m.account.CreditLimit))

		if len(m.recent) > 0 {
			b.WriteString("Recent activity:\n")

			for _, e := range m.recent {
				fmt.Fprintf(&b, "  %s  %-8s %-9s %s\n",
					FormatDate(e.CreatedAt), e.Type, e.Method, FormatNaira(e.Amount))
			}
		}

		if m.status != "" {
			b.WriteString("\n" + m.status)
		}

		b.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render("t: top up | r: refresh | Esc: new lookup"))

		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}
}

// Messages

type loadAccountMsg struct {
	account *wallet.Account
	recent  []*ledger.Entry
	err     error
}

func (m WalletModel) loadAccountCmd(patientID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		account, err := m.walletService.Account(ctx, patientID)
		if err != nil {
			return loadAccountMsg{err: err}
		}

		recent, err := m.ledgerService.ListByPatient(ctx, patientID, ledger.ListFilter{})
		if err != nil {
			return loadAccountMsg{err: err}
		}

		if len(recent) > 10 {
			recent = recent[:10]
		}

		return loadAccountMsg{account: account, recent: recent}
	}
}

type topupResultMsg struct {
	receipt *payment.Receipt
	err     error
}

func (m WalletModel) topupCmd() tea.Cmd {
	amount, _ := strconv.ParseInt(strings.TrimSpace(m.formAmount), 10, 64)
	method := ledger.Method(m.formMethod)
	patientID := m.account.PatientID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		receipt, err := m.paymentService.ProcessTopup(ctx, patientID, amount, method, payment.Details{
			CashierName: m.cashierName,
		})

		return topupResultMsg{receipt: receipt, err: err}
	}
}
