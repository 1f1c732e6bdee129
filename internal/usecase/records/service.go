// Package records implements the plain read and mutation operations over
// CRM entities: bounded list, get by id, create, update. Anything that
// filters or ranks lives in usecase/search.
package records

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crmforge/pipedex/internal/domain"
	"github.com/crmforge/pipedex/internal/domain/record"
)

// Service handles direct record operations.
type Service struct {
	reader      Reader
	mutator     Mutator
	defaultPage int
	maxPage     int
	logger      *zap.Logger
}

// New creates a records Service.
func New(reader Reader, mutator Mutator, logger *zap.Logger) *Service {
	return &Service{
		reader:      reader,
		mutator:     mutator,
		defaultPage: 100,
		maxPage:     500,
		logger:      logger,
	}
}

// WithPagination overrides the default and maximum list sizes.
func (s *Service) WithPagination(defaultPage, maxPage int) *Service {
	if defaultPage > 0 {
		s.defaultPage = defaultPage
	}
	if maxPage > 0 {
		s.maxPage = maxPage
	}
	return s
}

// List returns up to limit records of the kind, in the CRM's own order
// (most recently active first for most kinds).
func (s *Service) List(ctx context.Context, kind domain.EntityKind, limit int) ([]record.Record, error) {
	if limit <= 0 {
		limit = s.defaultPage
	}
	if limit > s.maxPage {
		limit = s.maxPage
	}

	recs, err := s.reader.FetchAll(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Endpoint(), err)
	}
	return recs, nil
}

// Get returns one record by id. Missing records surface domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, kind domain.EntityKind, id int64) (record.Record, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%s id must be positive, got %d", kind, id)
	}
	rec, err := s.reader.FetchByID(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return rec, nil
}

// Create inserts a new record. The required display field per kind is
// checked here so a bad call fails before spending a throttle slot.
func (s *Service) Create(ctx context.Context, kind domain.EntityKind, fields map[string]any) (record.Record, error) {
	if err := checkRequired(kind, fields); err != nil {
		return nil, err
	}
	rec, err := s.mutator.Create(ctx, kind, fields)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}
	if id, ok := rec.ID(); ok {
		s.logger.Info("record created", zap.String("kind", string(kind)), zap.Int64("id", id))
	}
	return rec, nil
}

// Update modifies an existing record with the given fields.
func (s *Service) Update(ctx context.Context, kind domain.EntityKind, id int64, fields map[string]any) (record.Record, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%s id must be positive, got %d", kind, id)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("update %s %d: no fields to change", kind, id)
	}
	rec, err := s.mutator.Update(ctx, kind, id, fields)
	if err != nil {
		return nil, fmt.Errorf("update %s %d: %w", kind, id, err)
	}
	s.logger.Info("record updated", zap.String("kind", string(kind)), zap.Int64("id", id))
	return rec, nil
}

// checkRequired enforces the field each kind cannot be created without.
func checkRequired(kind domain.EntityKind, fields map[string]any) error {
	var required string
	switch kind {
	case domain.KindDeal, domain.KindLead:
		required = "title"
	case domain.KindPerson, domain.KindOrganization:
		required = "name"
	case domain.KindNote:
		required = "content"
	case domain.KindActivity:
		required = "subject"
	}
	if required == "" {
		return nil
	}
	if v, ok := fields[required].(string); !ok || v == "" {
		return fmt.Errorf("create %s: %q is required", kind, required)
	}
	return nil
}
