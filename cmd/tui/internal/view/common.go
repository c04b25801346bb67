// Package view holds the cashier console screens: invoices, ledger
// entries, wallets, reconciliation and statement export.
package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const dbTimeout = 5 * time.Second

// CommonModel carries the terminal dimensions every screen needs for
// layout.
type CommonModel struct {
	Width  int
	Height int
}

// BackMsg tells the shell to return to the main menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// DbCtx returns a context with the standard timeout for database
// operations triggered from the console.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
