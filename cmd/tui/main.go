package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/chinedu-obi/medibill/cmd/tui/internal/view"
	"github.com/chinedu-obi/medibill/internal/config"
	"github.com/chinedu-obi/medibill/internal/database"
	"github.com/chinedu-obi/medibill/internal/export"
	"github.com/chinedu-obi/medibill/internal/importer"
	"github.com/chinedu-obi/medibill/internal/invoice"
	invoiceStore "github.com/chinedu-obi/medibill/internal/invoice/store"
	"github.com/chinedu-obi/medibill/internal/ledger"
	ledgerStore "github.com/chinedu-obi/medibill/internal/ledger/store"
	"github.com/chinedu-obi/medibill/internal/payment"
	paymentStore "github.com/chinedu-obi/medibill/internal/payment/store"
	"github.com/chinedu-obi/medibill/internal/reconcile"
	"github.com/chinedu-obi/medibill/internal/wallet"
	walletStore "github.com/chinedu-obi/medibill/internal/wallet/store"
)

type model struct {
	invoiceService   *invoice.Service
	ledgerService    *ledger.Service
	walletService    *wallet.Service
	paymentService   *payment.Service
	importService    *importer.Service
	reconcileService *reconcile.Service
	exportService    *export.Service
	cashierName      string

	currentView View

	invoicesView     view.InvoicesModel
	transactionsView view.TransactionsModel
	walletView       view.WalletModel
	reconcileView    view.ReconcileModel
	exportView       view.ExportModel
}

type View int

const (
	ViewMenu         View = 0
	ViewInvoices     View = 1
	ViewTransactions View = 2
	ViewWallet       View = 3
	ViewReconcile    View = 4
	ViewExport       View = 5
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	cashierName := os.Getenv("CASHIER_NAME")
	if cashierName == "" {
		cashierName = "desk"
	}

	ledgerSvc := ledger.NewService(ledgerStore.New(db))
	invoiceSvc := invoice.NewService(invoiceStore.New(db), ledgerSvc)
	walletSvc := wallet.NewService(walletStore.New(db), cfg.Billing.DefaultCreditLimit)
	paymentSvc := payment.NewService(paymentStore.New(db, cfg.Billing.DefaultCreditLimit), invoiceSvc, walletSvc)
	impSvc := importer.NewService()
	recSvc := reconcile.NewService(ledgerSvc)
	expSvc := export.NewService(ledgerSvc, walletSvc)

	return model{
		invoiceService:   invoiceSvc,
		ledgerService:    ledgerSvc,
		walletService:    walletSvc,
		paymentService:   paymentSvc,
		importService:    impSvc,
		reconcileService: recSvc,
		exportService:    expSvc,
		cashierName:      cashierName,
		currentView:      ViewMenu,
		invoicesView:     view.NewInvoicesModel(invoiceSvc, ledgerSvc, paymentSvc, cashierName),
		transactionsView: view.NewTransactionsModel(ledgerSvc),
		walletView:       view.NewWalletModel(walletSvc, paymentSvc, ledgerSvc, cashierName),
		reconcileView:    view.NewReconcileModel(impSvc, recSvc),
		exportView:       view.NewExportModel(expSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewInvoices
				m.invoicesView = view.NewInvoicesModel(m.invoiceService, m.ledgerService, m.paymentService, m.cashierName)

				return m, m.invoicesView.Init()
			case "2":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.ledgerService)

				return m, m.transactionsView.Init()
			case "3":
				m.currentView = ViewWallet
				m.walletView = view.NewWalletModel(m.walletService, m.paymentService, m.ledgerService, m.cashierName)

				return m, m.walletView.Init()
			case "4":
				m.currentView = ViewReconcile
				m.reconcileView = view.NewReconcileModel(m.importService, m.reconcileService)

				return m, m.reconcileView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoicesView.Update(msg)
		m.invoicesView = newModel.(view.InvoicesModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewWallet:
		var newModel tea.Model
		newModel, cmd = m.walletView.Update(msg)
		m.walletView = newModel.(view.WalletModel)
	case ViewReconcile:
		var newModel tea.Model
		newModel, cmd = m.reconcileView.Update(msg)
		m.reconcileView = newModel.(view.ReconcileModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Medibill Cashier Console\n\n" +
				"1. Invoices\n" +
				"2. Ledger Entries\n" +
				"3. Patient Wallets\n" +
				"4. Reconcile Bank Statement\n" +
				"5. Export Wallet Statements\n\n" +
				"q. Quit",
		)
	case ViewInvoices:
		return m.invoicesView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewWallet:
		return m.walletView.View()
	case ViewReconcile:
		return m.reconcileView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
