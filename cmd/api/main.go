package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/chinedu-obi/medibill/internal/config"
	"github.com/chinedu-obi/medibill/internal/database"
	medibillHttp "github.com/chinedu-obi/medibill/internal/http"
	invoiceHandler "github.com/chinedu-obi/medibill/internal/http/invoice"
	entryHandler "github.com/chinedu-obi/medibill/internal/http/ledgerentry"
	patientHandler "github.com/chinedu-obi/medibill/internal/http/patient"
	statementHandler "github.com/chinedu-obi/medibill/internal/http/statement"
	walletHandler "github.com/chinedu-obi/medibill/internal/http/wallet"
	"github.com/chinedu-obi/medibill/internal/importer"
	"github.com/chinedu-obi/medibill/internal/invoice"
	invoiceStore "github.com/chinedu-obi/medibill/internal/invoice/store"
	"github.com/chinedu-obi/medibill/internal/ledger"
	ledgerStore "github.com/chinedu-obi/medibill/internal/ledger/store"
	"github.com/chinedu-obi/medibill/internal/patientdir"
	"github.com/chinedu-obi/medibill/internal/payment"
	paymentStore "github.com/chinedu-obi/medibill/internal/payment/store"
	"github.com/chinedu-obi/medibill/internal/reconcile"
	"github.com/chinedu-obi/medibill/internal/wallet"
	walletStore "github.com/chinedu-obi/medibill/internal/wallet/store"
)

func main() {
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
	defer db.Close()

	var (
		ledgerService    = ledger.NewService(ledgerStore.New(db))
		invoiceService   = invoice.NewService(invoiceStore.New(db), ledgerService)
		walletService    = wallet.NewService(walletStore.New(db), cfg.Billing.DefaultCreditLimit)
		paymentService   = payment.NewService(paymentStore.New(db, cfg.Billing.DefaultCreditLimit), invoiceService, walletService)
		importService    = importer.NewService()
		reconcileService = reconcile.NewService(ledgerService)
		directory        = patientdir.NewClient(cfg.Directory.BaseURL, cfg.Directory.Token)
	)

	var (
		invoicesH   = invoiceHandler.NewHandler(invoiceService, paymentService, ledgerService)
		entriesH    = entryHandler.NewHandler(ledgerService)
		walletsH    = walletHandler.NewHandler(walletService, paymentService, ledgerService)
		statementsH = statementHandler.NewHandler(importService, reconcileService)
		patientsH   = patientHandler.NewHandler(directory)
	)

	router := medibillHttp.New(cfg.Auth.JWTSecret, cfg.Server.AllowedOrigins, invoicesH, entriesH, walletsH, statementsH, patientsH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
