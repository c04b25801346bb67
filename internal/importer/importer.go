// Package importer turns bank statement exports into statement lines
// for transfer reconciliation.
package importer

import (
	"io"

	"github.com/chinedu-obi/medibill/internal/reconcile"
)

type Bank string

const (
	BankGTBank Bank = "gtbank"
)

type Importer interface {
	Parse(r io.Reader) ([]reconcile.StatementLine, error)
}
