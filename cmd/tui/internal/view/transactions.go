package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chinedu-obi/medibill/internal/ledger"
	"github.com/chinedu-obi/medibill/internal/query"
)

type TransactionsModel struct {
	CommonModel
	ledgerService *ledger.Service

	table   table.Model
	entries []*ledger.Entry

	typeFilterIdx   int
	methodFilterIdx int

	loading bool
	err     error
}

func NewTransactionsModel(ledgerSvc *ledger.Service) TransactionsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 9},
		{Title: "Method", Width: 10},
		{Title: "Status", Width: 10},
		{Title: "Amount", Width: 14},
		{Title: "Reference", Width: 24},
		{Title: "Description", Width: 30},
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

	return TransactionsModel{
		ledgerService: ledgerSvc,
		table:         t,
	}
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadEntriesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.entries = msg.entries
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % 4
			m.refreshTable()

			return m, nil
		case "m":
			m.methodFilterIdx = (m.methodFilterIdx + 1) % 5
			m.refreshTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

var (
	typeFilters = []*ledger.Type{
		nil,
		new(ledger.TypePayment),
		new(ledger.TypeRefund),
		new(ledger.TypeTopup),
	}

	methodFilters = []*ledger.Method{
		nil,
		new(ledger.MethodCash),
		new(ledger.MethodTransfer),
		new(ledger.MethodWallet),
		new(ledger.MethodCard),
	}
)

func (m *TransactionsModel) refreshTable() {
	visible := query.FilterEntries(m.entries, query.EntryFilter{
		Type:   typeFilters[m.typeFilterIdx],
		Method: methodFilters[m.methodFilterIdx],
	})

	rows := make([]table.Row, 0, len(visible))
	for _, e := range visible {
		rows = append(rows, table.Row{
			FormatDate(e.CreatedAt),
			string(e.Type),
			string(e.Method),
			string(e.Status),
			FormatNaira(e.Amount),
			e.Reference,
			e.Description,
		})
	}

	m.table.SetRows(rows)
}

func (m TransactionsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger entries...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	typeLabels := []string{"All", "Payments", "Refunds", "Top-ups"}
	methodLabels := []string{"All", "Cash", "Transfer", "Wallet", "Card"}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [m] Method: %s",
		activeStyle(typeLabels[m.typeFilterIdx]),
		activeStyle(methodLabels[m.methodFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		lipgloss.NewStyle().Faint(true).Render("Esc: back | t: type filter | m: method filter | r: refresh"),
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type loadEntriesMsg struct {
	entries []*ledger.Entry
	err     error
}

func (m TransactionsModel) loadCmd() tea.Cmd {
	ninetyDaysAgo := time.Now().AddDate(0, 0, -90)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.ledgerService.List(ctx, ledger.ListFilter{StartDate: &ninetyDaysAgo})

		return loadEntriesMsg{entries: entries, err: err}
	}
}
