// Package envelope builds the uniform response shapes for read and search
// tools. Two paths exist on purpose: a plain success envelope for results
// produced by the reliable client-side engines, and a diagnostic envelope
// for the known-unreliable remote search, so callers can tell "confirmed
// zero matches" from "the remote search found nothing, try another way".
package envelope

import (
	"fmt"

	"github.com/crmforge/pipedex/internal/domain"
	"github.com/crmforge/pipedex/internal/domain/record"
	"github.com/crmforge/pipedex/internal/domain/search/result"
)

// Envelope is the response body serialized into every read tool result.
type Envelope struct {
	Summary        string          `json:"summary"`
	Count          int             `json:"count"`
	AppliedFilters []string        `json:"applied_filters,omitempty"`
	Items          []record.Record `json:"items,omitempty"`
	Matches        []Match         `json:"matches,omitempty"`
	Truncated      bool            `json:"truncated,omitempty"`
	Warning        string          `json:"warning,omitempty"`
	LikelyCauses   []string        `json:"likely_causes,omitempty"`
	Suggestion     *Suggestion     `json:"suggestion,omitempty"`
}

// Match is one fuzzy result with its score and explanations.
type Match struct {
	Record  record.Record `json:"record"`
	Score   int           `json:"score"`
	Reasons []string      `json:"reasons"`
}

// Suggestion names a concrete alternative tool invocation.
type Suggestion struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// ReadResult shapes a list of records from a reliable read or filter
// operation. truncatedTo > 0 caps the item list and marks the envelope.
func ReadResult(kind domain.EntityKind, records []record.Record, applied []string, truncatedTo int) Envelope {
	items := records
	truncated := false
	if truncatedTo > 0 && len(items) > truncatedTo {
		items = items[:truncatedTo]
		truncated = true
	}

	summary := fmt.Sprintf("Found %d %s", len(records), plural(kind))
	if len(applied) > 0 {
		summary += fmt.Sprintf(" matching %d filter(s)", len(applied))
	}

	return Envelope{
		Summary:        summary,
		Count:          len(records),
		AppliedFilters: applied,
		Items:          items,
		Truncated:      truncated,
	}
}

// SingleResult shapes a get-by-id response.
func SingleResult(kind domain.EntityKind, rec record.Record) Envelope {
	return Envelope{
		Summary: fmt.Sprintf("Found %s", kind),
		Count:   1,
		Items:   []record.Record{rec},
	}
}

// MatchResults shapes ranked fuzzy-find output.
func MatchResults(scored []result.Scored) Envelope {
	matches := make([]Match, len(scored))
	for i, s := range scored {
		matches[i] = Match{Record: s.Record(), Score: s.Score(), Reasons: s.Reasons()}
	}
	return Envelope{
		Summary: fmt.Sprintf("Found %d match(es), best first", len(matches)),
		Count:   len(matches),
		Matches: matches,
	}
}

// plural returns the plural noun for a kind. The API endpoint segment is
// already the English plural ("deals", "activities").
func plural(kind domain.EntityKind) string {
	return kind.Endpoint()
}

// EmptySearchDiagnostic shapes the degraded-success response for an empty
// remote search. It names the literal term, lists plausible causes in
// order of likelihood, and points at a reliable alternative.
func EmptySearchDiagnostic(term string, alternative Suggestion) Envelope {
	return Envelope{
		Summary: fmt.Sprintf("Remote search for %q returned no results", term),
		Count:   0,
		Warning: "Pipedrive's search endpoint is unreliable and may miss records that exist.",
		LikelyCauses: []string{
			"search term too short (Pipedrive ignores terms under 2 characters)",
			"strict tokenization on the remote index (partial words often miss)",
			"remote search index staleness (recently changed records lag behind)",
		},
		Suggestion: &alternative,
	}
}
