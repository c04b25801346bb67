package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/chinedu-obi/medibill/internal/export"
	"github.com/chinedu-obi/medibill/internal/ledger"
)

type ExportModel struct {
	CommonModel
	exportService *export.Service

	form    *huh.Form
	running bool
	items   []export.Item
	err     error

	// Form bindings
	formPatients string
	formDir      string
}

func NewExportModel(expSvc *export.Service) ExportModel {
	m := ExportModel{
		exportService: expSvc,
		formDir:       "./statements",
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("patients").
				Title("Patient IDs (comma-separated)").
				Value(&m.formPatients).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("enter at least one patient id")
					}

					return nil
				}),
			huh.NewInput().
				Key("dir").
				Title("Output Directory").
				Value(&m.formDir),
		),
	).WithWidth(50).WithShowHelp(false)

	return m
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case exportResultMsg:
		m.running = false
		m.items = msg.items
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.items != nil || m.err != nil {
			return m, Back
		}
	}

	if m.running || m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.running = true

	return m, m.exportCmd()
}

func (m ExportModel) View() string {
	panel := lipgloss.NewStyle().Padding(1, 2)

	switch {
	case m.running:
		return panel.Render("Writing statements...")
	case m.err != nil:
		return panel.Render(fmt.Sprintf("Export failed: %v\n\nPress any key to go back", m.err))
	case m.items != nil:
		var b strings.Builder

		fmt.Fprintf(&b, "Wrote %d statements\n\n", len(m.items))

		for _, item := range m.items {
			fmt.Fprintf(&b, "  %s  (%d entries, balance %s)\n",
				item.FilePath, item.Entries, FormatNaira(item.Balance))
		}

		b.WriteString("\nPress any key to go back")

		return panel.Render(b.String())
	default:
		return panel.Render("Export Wallet Statements\n\n" + m.form.View())
	}
}

// Messages

type exportResultMsg struct {
	items []export.Item
	err   error
}

func (m ExportModel) exportCmd() tea.Cmd {
	var patientIDs []string

	for _, id := range strings.Split(m.formPatients, ",") {
		if id = strings.TrimSpace(id); id != "" {
			patientIDs = append(patientIDs, id)
		}
	}

	dir := strings.TrimSpace(m.formDir)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		items, err := m.exportService.Export(ctx, patientIDs, ledger.ListFilter{}, dir)

		return exportResultMsg{items: items, err: err}
	}
}
