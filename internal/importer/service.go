package importer

import (
	"fmt"
	"io"

	"github.com/chinedu-obi/medibill/internal/importer/gtbank"
	"github.com/chinedu-obi/medibill/internal/reconcile"
)

type Service struct {
	gtbankImporter Importer
}

func NewService() *Service {
	return &Service{
		gtbankImporter: gtbank.NewParser(),
	}
}

func (s *Service) Import(bank Bank, r io.Reader) ([]reconcile.StatementLine, error) {
	switch bank {
	case BankGTBank:
		return s.gtbankImporter.Parse(r)
	default:
		return nil, fmt.Errorf("unknown bank: %s", bank)
	}
}
