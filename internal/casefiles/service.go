package casefiles

import (
	"context"
	"log/slog"
	"time"

	"github.com/vb-entreprise/rrsa-server/internal/docstore"
	"github.com/vb-entreprise/rrsa-server/internal/repository"
)

// Service handles case paper business logic.
type Service struct {
	records   *repository.Repository[CasePaper]
	allocator *SequenceAllocator
}

// NewService builds a Service and its allocator over the shared records.
func NewService(records *repository.Repository[CasePaper], logger *slog.Logger) *Service {
	return &Service{
		records:   records,
		allocator: NewSequenceAllocator(records, logger),
	}
}

// NewServiceFromStore is a convenience constructor for callers holding
// only a document store.
func NewServiceFromStore(store docstore.Store, logger *slog.Logger) *Service {
	return NewService(repository.New[CasePaper](store, Collection, logger), logger)
}

// Create allocates the next case number, stores the record, and returns
// the record id with the number it was given.
func (s *Service) Create(ctx context.Context, paper CasePaper) (string, string, error) {
	paper.CaseNumber = s.allocator.Next(ctx)
	if paper.Status == "" {
		paper.Status = "open"
	}
	if paper.AdmittedDate == "" {
		paper.AdmittedDate = time.Now().Format(AdmittedDateLayout)
	}
	id, err := s.records.Create(ctx, paper)
	if err != nil {
		return "", "", err
	}
	return id, paper.CaseNumber, nil
}

// List returns all case papers, newest first.
func (s *Service) List(ctx context.Context) []repository.Record[CasePaper] {
	return s.records.GetAll(ctx)
}

// Get fetches a single case paper by record id.
func (s *Service) Get(ctx context.Context, id string) (repository.Record[CasePaper], error) {
	return s.records.Get(ctx, id)
}

// Update merge-writes the given fields. The case number is immutable
// once allocated, so it is stripped from the patch.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) error {
	delete(fields, "caseNumber")
	return s.records.Update(ctx, id, fields)
}

// Delete removes a case paper permanently. Its number is never reissued.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.records.Delete(ctx, id)
}
