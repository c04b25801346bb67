package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	FindByReference(ctx context.Context, reference string) (*Entry, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Entry, error)
	ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]*Entry, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type ListFilter struct {
	Type      *Type
	Method    *Method
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
}

// Service exposes read access to the ledger plus the one permitted
// mutation: failing a pending entry. New entries are written exclusively
// by the payment processor.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) ByReference(ctx context.Context, reference string) (*Entry, error) {
	return s.repo.FindByReference(ctx, reference)
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Entry, error) {
	return s.repo.ListByInvoice(ctx, invoiceID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]*Entry, error) {
	return s.repo.ListByPatient(ctx, patientID, filter)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, filter)
}

// MarkFailed transitions a pending entry to failed. Completed and failed
// entries are immutable, so the repository rejects anything else with
// ErrNotPending.
func (s *Service) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return s.repo.MarkFailed(ctx, id, reason)
}
