// Package export writes per-patient wallet statements to disk for
// hand-off to patients or auditors.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chinedu-obi/medibill/internal/ledger"
)

// Item links a patient statement to its file on disk.
type Item struct {
	PatientID string
	Balance   int64
	Entries   int
	FilePath  string
}

type EntryLister interface {
	ListByPatient(ctx context.Context, patientID string, filter ledger.ListFilter) ([]*ledger.Entry, error)
}

type BalanceReader interface {
	Balance(ctx context.Context, patientID string) (int64, error)
}

type Service struct {
	entries EntryLister
	wallets BalanceReader
}

func NewService(entries EntryLister, wallets BalanceReader) *Service {
	return &Service{entries: entries, wallets: wallets}
}

// Export writes one CSV statement per patient to the output directory
// and returns an item per statement written. Patients with no ledger
// activity in the filter window are skipped.
func (s *Service) Export(ctx context.Context, patientIDs []string, filter ledger.ListFilter, outputDir string) ([]Item, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(patientIDs))

	for _, patientID := range patientIDs {
		entries, err := s.entries.ListByPatient(ctx, patientID, filter)
		if err != nil {
			return nil, fmt.Errorf("listing entries for patient %s: %w", patientID, err)
		}

		if len(entries) == 0 {
			continue
		}

		balance, err := s.wallets.Balance(ctx, patientID)
		if err != nil {
			return nil, fmt.Errorf("reading balance for patient %s: %w", patientID, err)
		}

		path := filepath.Join(outputDir, statementFilename(patientID))
		if err := writeStatement(path, entries); err != nil {
			return nil, fmt.Errorf("writing statement for patient %s: %w", patientID, err)
		}

		items = append(items, Item{
			PatientID: patientID,
			Balance:   balance,
			Entries:   len(entries),
			FilePath:  path,
		})
	}

	return items, nil
}

func statementFilename(patientID string) string {
	return fmt.Sprintf("wallet-statement-%s-%s.csv", patientID, time.Now().Format("2006-01-02"))
}

func writeStatement(path string, entries []*ledger.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"Date", "Type", "Method", "Status", "Description", "Reference", "Amount (kobo)"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, e := range entries {
		record := []string{
			e.CreatedAt.Format("2006-01-02 15:04"),
			string(e.Type),
			string(e.Method),
			string(e.Status),
			e.Description,
			e.Reference,
			strconv.FormatInt(e.Amount, 10),
		}

		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}

	w.Flush()

	return w.Error()
}

// EmailBody builds a plain-text summary for sending statements out.
func EmailBody(items []Item) string {
	body := "Wallet statements attached.\n\n"

	for _, item := range items {
		body += fmt.Sprintf("Patient %s: %d entries, closing balance %d kobo (%s)\n",
			item.PatientID, item.Entries, item.Balance, filepath.Base(item.FilePath))
	}

	return body
}
