package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chinedu-obi/medibill/internal/importer"
	"github.com/chinedu-obi/medibill/internal/reconcile"
)

const reconcileTimeout = 2 * time.Minute

type reconcileState int

const (
	reconcileStateBankSelect reconcileState = iota
	reconcileStateFilePick
	reconcileStateRunning
	reconcileStateResult
)

type ReconcileModel struct {
	CommonModel
	importService    *importer.Service
	reconcileService *reconcile.Service

	state        reconcileState
	filePicker   filepicker.Model
	selectedBank importer.Bank
	bankOptions  []importer.Bank
	bankCursor   int

	report *reconcile.Report
	status string
	err    error
}

func NewReconcileModel(impSvc *importer.Service, recSvc *reconcile.Service) ReconcileModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ReconcileModel{
		importService:    impSvc,
		reconcileService: recSvc,
		filePicker:       fp,
		bankOptions:      []importer.Bank{importer.BankGTBank},
	}
}

func (m ReconcileModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ReconcileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == reconcileStateBankSelect {
			return m.updateBankSelect(msg)
		}

	case reconcileResultMsg:
		m.state = reconcileStateResult

		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.report = msg.report

		return m, nil
	}

	if m.state != reconcileStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = reconcileStateRunning
		m.status = fmt.Sprintf("Reconciling %s...", path)

		return m, m.reconcileCmd(path)
	}

	return m, cmd
}

func (m ReconcileModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case reconcileStateFilePick:
		m.state = reconcileStateBankSelect
		return m, nil
	case reconcileStateResult:
		m.state = reconcileStateBankSelect
		m.report = nil
		m.err = nil

		return m, nil
	}

	return m, Back
}

func (m ReconcileModel) updateBankSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.bankCursor > 0 {
			m.bankCursor--
		}
	case tea.KeyDown:
		if m.bankCursor < len(m.bankOptions)-1 {
			m.bankCursor++
		}
	case tea.KeyEnter:
		m.selectedBank = m.bankOptions[m.bankCursor]
		m.state = reconcileStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ReconcileModel) View() string {
	switch m.state {
	case reconcileStateBankSelect:
		return m.viewBankSelect()
	case reconcileStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select statement file:\n\n" + m.filePicker.View())
	case reconcileStateRunning:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case reconcileStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ReconcileModel) viewBankSelect() string {
	s := "Select Bank:\n\n"

	for i, bank := range m.bankOptions {
		cursor := " "
		if i == m.bankCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, bank)
	}

	s += "\nEsc: back | Enter: select"

	return lipgloss.NewStyle().Padding(1, 2).Render(s)
}

func (m ReconcileModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\nEsc: back", m.err))
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Reconciliation Report\n\n")
	fmt.Fprintf(&b, "Matched:          %d\n", m.report.MatchedCount)
	fmt.Fprintf(&b, "Amount mismatch:  %d\n", m.report.MismatchCount)
	fmt.Fprintf(&b, "Unmatched:        %d\n", m.report.UnmatchedCount)
	fmt.Fprintf(&b, "Missing on statement: %d\n\n", len(m.report.UnrecordedEntries))

	for _, match := range m.report.Matches {
		if match.Status == reconcile.StatusMatched {
			continue
		}

		fmt.Fprintf(&b, "[%s] %s  %s  %s\n",
			match.Status, FormatDate(match.Line.Date), match.Line.Reference, FormatNaira(match.Line.Amount))
	}

	for _, e := range m.report.UnrecordedEntries {
		fmt.Fprintf(&b, "[missing] %s  %s  %s\n",
			FormatDate(e.CreatedAt), e.Reference, FormatNaira(e.Amount))
	}

	b.WriteString("\nEsc: back")

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// Messages

type reconcileResultMsg struct {
	report *reconcile.Report
	err    error
}

func (m ReconcileModel) reconcileCmd(path string) tea.Cmd {
	bank := m.selectedBank

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return reconcileResultMsg{err: fmt.Errorf("opening statement: %w", err)}
		}
		defer f.Close()

		lines, err := m.importService.Import(bank, f)
		if err != nil {
			return reconcileResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()

		report, err := m.reconcileService.Reconcile(ctx, lines)

		return reconcileResultMsg{report: report, err: err}
	}
}
