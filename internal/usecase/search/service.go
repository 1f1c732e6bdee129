package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crmforge/pipedex/internal/domain"
	"github.com/crmforge/pipedex/internal/domain/record"
	"github.com/crmforge/pipedex/internal/domain/search/match"
	"github.com/crmforge/pipedex/internal/domain/search/predicate"
	"github.com/crmforge/pipedex/internal/domain/search/result"
)

// MaxFetchLimit is the hard ceiling on bulk reads from the CRM.
const MaxFetchLimit = 500

// MaxFuzzyCap is the hard ceiling on fuzzy result lists.
const MaxFuzzyCap = 100

// Service orchestrates the record source with the client-side filter and
// scoring engines. The record set fetched for one invocation is a private
// snapshot: it is never shared or cached across invocations.
type Service struct {
	source Source
	logger *zap.Logger
}

// New creates a search Service.
func New(source Source, logger *zap.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// FilterRecords fetches up to limit records of the given kind and narrows
// them with the predicate set. Returns the matching records in fetch order
// plus the applied predicate descriptions.
func (s *Service) FilterRecords(
	ctx context.Context, kind domain.EntityKind,
	limit int, preds predicate.Set,
) ([]record.Record, []string, error) {
	records, err := s.source.FetchAll(ctx, kind, clampFetchLimit(limit))
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", kind.Endpoint(), err)
	}

	filtered, applied := Filter(records, preds)

	s.logger.Debug("filtered records",
		zap.String("kind", string(kind)),
		zap.Int("fetched", len(records)),
		zap.Int("matched", len(filtered)),
		zap.Strings("applied", applied),
	)
	return filtered, applied, nil
}

// FuzzyFindPersons fetches persons and ranks them against the query.
// Fails with domain.ErrInvalidQuery before fetching anything when the
// query is empty.
func (s *Service) FuzzyFindPersons(
	ctx context.Context, q match.Query, limit int,
) ([]result.Scored, error) {
	if q.IsEmpty() {
		return nil, domain.ErrInvalidQuery
	}
	if limit <= 0 {
		limit = DefaultFuzzyCap
	}
	if limit > MaxFuzzyCap {
		limit = MaxFuzzyCap
	}

	persons, err := s.source.FetchAll(ctx, domain.KindPerson, MaxFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch persons: %w", err)
	}

	scored, err := FuzzyFind(persons, q, limit)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("fuzzy find",
		zap.Int("candidates", len(persons)),
		zap.Int("matched", len(scored)),
	)
	return scored, nil
}

// RemoteSearch runs the CRM's own search endpoint for the term. An empty
// result here is a degraded success, not an error: the caller shapes it
// into a diagnostic envelope suggesting a reliable alternative.
func (s *Service) RemoteSearch(
	ctx context.Context, kind domain.EntityKind, term string,
) ([]record.Record, error) {
	records, err := s.source.RemoteSearch(ctx, kind, term)
	if err != nil {
		return nil, fmt.Errorf("remote search %q: %w", term, err)
	}
	if len(records) == 0 {
		s.logger.Info("remote search returned nothing",
			zap.String("kind", string(kind)),
			zap.String("term", term),
		)
	}
	return records, nil
}

func clampFetchLimit(limit int) int {
	if limit <= 0 || limit > MaxFetchLimit {
		return MaxFetchLimit
	}
	return limit
}
