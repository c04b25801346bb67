package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chinedu-obi/medibill/internal/invoice"
	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/payment"
	"github.com/chinedu-obi/medibill/internal/query"
)

type invoicesState int

const (
	invoicesStateBrowse invoicesState = iota
	invoicesStatePay
)

type InvoicesModel struct {
	CommonModel
	invoiceService *invoice.Service
	ledgerService  *ledger.Service
	paymentService *payment.Service
	cashierName    string

	state    invoicesState
	table    table.Model
	invoices []*invoice.Invoice
	payView  PaymentModel

	statusFilterIdx int
	dateFilterIdx   int

	loading bool
	err     error
	status  string
}

func NewInvoicesModel(invoiceSvc *invoice.Service, ledgerSvc *ledger.Service, paymentSvc *payment.Service, cashierName string) InvoicesModel {
	columns := []table.Column{
		{Title: "Number", Width: 14},
		{Title: "Patient", Width: 24},
		{Title: "Amount", Width: 14},
		{Title: "Due", Width: 12},
		{Title: "Status", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return InvoicesModel{
		invoiceService: invoiceSvc,
		ledgerService:  ledgerSvc,
		paymentService: paymentSvc,
		cashierName:    cashierName,
		table:          t,
	}
}

func (m InvoicesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.invoices = msg.invoices
		m.refreshTable()

		return m, nil

	case openPaymentMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.state = invoicesStatePay
		m.payView = NewPaymentModel(m.paymentService, msg.invoice, msg.outstanding, m.cashierName)
		m.table.Blur()

		return m, m.payView.Init()

	case PaymentDoneMsg:
		m.state = invoicesStateBrowse
		m.table.Focus()

		if msg.Receipt != nil {
			m.status = fmt.Sprintf("Recorded %s for %s", FormatNaira(msg.Receipt.Amount), msg.Receipt.InvoiceNumber)
		}

		m.loading = true

		return m, m.loadCmd()

	case cancelInvoiceMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Cancel failed: %v", msg.err)
			return m, nil
		}

		m.status = "Invoice cancelled"
		m.loading = true

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == invoicesStatePay {
		var newModel tea.Model
		newModel, cmd := m.payView.Update(msg)
		m.payView = newModel.(PaymentModel)

		return m, cmd
	}

	return m.updateBrowse(msg)
}

func (m InvoicesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "p":
			if inv := m.selected(); inv != nil {
				return m, m.openPaymentCmd(inv)
			}
		case "c":
			if inv := m.selected(); inv != nil {
				return m, m.cancelCmd(inv)
			}
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % 6
			m.refreshTable()

			return m, nil
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % 3
			m.loading = true

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoicesModel) selected() *invoice.Invoice {
	rows := m.visibleInvoices()

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(rows) {
		return nil
	}

	return rows[idx]
}

var statusFilters = []*invoice.Status{
	nil,
	new(invoice.StatusPending),
	new(invoice.StatusPartial),
	new(invoice.StatusPaid),
	new(invoice.StatusOverdue),
	new(invoice.StatusCancelled),
}

func (m InvoicesModel) visibleInvoices() []*invoice.Invoice {
	return query.FilterInvoices(m.invoices, query.InvoiceFilter{
		Status: statusFilters[m.statusFilterIdx],
		SortBy: query.SortByDueDate,
	}, time.Now())
}

func (m *InvoicesModel) refreshTable() {
	now := time.Now()

	visible := m.visibleInvoices()

	rows := make([]table.Row, 0, len(visible))
	for _, inv := range visible {
		rows = append(rows, table.Row{
			inv.Number,
			inv.PatientName,
			FormatNaira(inv.Amount),
			FormatDate(inv.DueDate),
			string(inv.EffectiveStatus(now)),
		})
	}

	m.table.SetRows(rows)
}

func (m InvoicesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.state == invoicesStatePay {
		return lipgloss.NewStyle().Padding(1).Render(m.payView.View())
	}

	statusLabels := []string{"All", "Pending", "Partial", "Paid", "Overdue", "Cancelled"}
	dateLabels := []string{"All Time", "This Month", "Last Month"}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | [d] Date: %s",
		activeStyle(statusLabels[m.statusFilterIdx]),
		activeStyle(dateLabels[m.dateFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		lipgloss.NewStyle().Faint(true).Render("Esc: back | p: pay | c: cancel | s: status filter | d: date filter | r: refresh"),
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

// Messages

type loadInvoicesMsg struct {
	invoices []*invoice.Invoice
	err      error
}

func (m InvoicesModel) loadCmd() tea.Cmd {
	filter := invoice.ListFilter{}

	now := time.Now()

	switch m.dateFilterIdx {
	case 1:
		s := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0).Add(-time.Nanosecond)
		filter.StartDate = &s
		filter.EndDate = &e
	case 2:
		s := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0).Add(-time.Nanosecond)
		filter.StartDate = &s
		filter.EndDate = &e
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invoices, err := m.invoiceService.List(ctx, filter)

		return loadInvoicesMsg{invoices: invoices, err: err}
	}
}

type openPaymentMsg struct {
	invoice     *invoice.Invoice
	outstanding int64
	err         error
}

func (m InvoicesModel) openPaymentCmd(inv *invoice.Invoice) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if inv.Status == invoice.StatusCancelled {
			return openPaymentMsg{err: fmt.Errorf("invoice %s is cancelled", inv.Number)}
		}

		entries, err := m.ledgerService.ListByInvoice(ctx, inv.ID)
		if err != nil {
			return openPaymentMsg{err: err}
		}

		outstanding := inv.Amount - ledger.PaidSoFar(entries)
		if outstanding <= 0 {
			return openPaymentMsg{err: fmt.Errorf("invoice %s is fully paid", inv.Number)}
		}

		return openPaymentMsg{invoice: inv, outstanding: outstanding}
	}
}

type cancelInvoiceMsg struct {
	err error
}

func (m InvoicesModel) cancelCmd(inv *invoice.Invoice) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return cancelInvoiceMsg{err: m.invoiceService.Cancel(ctx, inv.ID)}
	}
}
