package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crmforge/pipedex/internal/domain"
	"github.com/crmforge/pipedex/internal/domain/record"
	"github.com/crmforge/pipedex/internal/domain/search/match"
	"github.com/crmforge/pipedex/internal/domain/search/result"
)

// DefaultFuzzyCap bounds the fuzzy result list when the caller gives no cap.
const DefaultFuzzyCap = 20

// FuzzyFind ranks records against a weighted multi-field query and returns
// the top results in descending score order.
//
// The match rule is deliberately a simple, explainable union rather than
// an edit-distance matcher: a fragment matches a text field when the text
// contains it case-insensitively, or when any whitespace-separated word of
// the text starts with it. Email and phone entries use the substring rule
// only, since they are not word-tokenized meaningfully.
//
// A record is included when at least one query field matches (score > 0);
// each matched field adds its weight. Equal scores keep their relative
// input order. limit caps the result count, not the score.
func FuzzyFind(records []record.Record, q match.Query, limit int) ([]result.Scored, error) {
	if q.IsEmpty() {
		return nil, domain.ErrInvalidQuery
	}
	if limit <= 0 {
		limit = DefaultFuzzyCap
	}

	scored := make([]result.Scored, 0, len(records))
	for _, rec := range records {
		score, reasons := scoreRecord(rec, q)
		if score == 0 {
			continue
		}
		scored = append(scored, result.New(rec, score, reasons))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score() > scored[j].Score()
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func scoreRecord(rec record.Record, q match.Query) (int, []string) {
	var score int
	var reasons []string

	if frag := q.Name(); frag != "" {
		if name, ok := rec.String("name"); ok && fuzzyMatch(name, frag) {
			score += match.WeightName
			reasons = append(reasons, fmt.Sprintf("name %q matched %q", name, frag))
		}
	}

	if frag := q.Organization(); frag != "" {
		if org, ok := rec.OrganizationName(); ok && fuzzyMatch(org, frag) {
			score += match.WeightOrganization
			reasons = append(reasons, fmt.Sprintf("organization %q matched %q", org, frag))
		}
	}

	if frag := q.Email(); frag != "" {
		if entry, ok := anyEntryContains(rec, "email", frag); ok {
			score += match.WeightEmail
			reasons = append(reasons, fmt.Sprintf("email %q matched %q", entry, frag))
		}
	}

	if frag := q.Phone(); frag != "" {
		if entry, ok := anyEntryContains(rec, "phone", frag); ok {
			score += match.WeightPhone
			reasons = append(reasons, fmt.Sprintf("phone %q matched %q", entry, frag))
		}
	}

	return score, reasons
}

// fuzzyMatch reports whether fragment matches text under the
// substring-or-word-prefix rule, case-insensitively.
func fuzzyMatch(text, fragment string) bool {
	t := strings.ToLower(text)
	f := strings.ToLower(fragment)
	if strings.Contains(t, f) {
		return true
	}
	for _, word := range strings.Fields(t) {
		if strings.HasPrefix(word, f) {
			return true
		}
	}
	return false
}

func anyEntryContains(rec record.Record, field, fragment string) (string, bool) {
	f := strings.ToLower(fragment)
	for _, e := range rec.Values(field) {
		if strings.Contains(strings.ToLower(e.Value), f) {
			return e.Value, true
		}
	}
	return "", false
}
