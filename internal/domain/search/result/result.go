// Package result holds the scored output of ranked search. Scored values
// are created per query and discarded after the response is shaped; they
// are never persisted.
package result

import "github.com/crmforge/pipedex/internal/domain/record"

// Scored is one ranked record with its relevance score and the
// human-readable reasons it matched.
type Scored struct {
	rec     record.Record
	score   int
	reasons []string
}

// New creates a Scored result.
func New(rec record.Record, score int, reasons []string) Scored {
	return Scored{rec: rec, score: score, reasons: reasons}
}

// Record returns the underlying record, unmodified.
func (s Scored) Record() record.Record { return s.rec }

// Score returns the total relevance score.
func (s Scored) Score() int { return s.score }

// Reasons returns the per-field match explanations, in match order.
func (s Scored) Reasons() []string { return s.reasons }
