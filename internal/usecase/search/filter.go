package search

import (
	"strings"

	"github.com/crmforge/pipedex/internal/domain/record"
	"github.com/crmforge/pipedex/internal/domain/search/predicate"
)

// Filter narrows records to those satisfying every predicate in the set
// and returns the descriptions of the predicates that were applied.
//
// Input order is preserved: callers rely on upstream ordering such as
// most-recently-active-first. An empty set returns the input unchanged.
// A record missing a targeted field fails that predicate; it is never an
// error. Records are only selected, never mutated.
func Filter(records []record.Record, preds predicate.Set) ([]record.Record, []string) {
	if preds.IsEmpty() {
		return records, nil
	}

	out := make([]record.Record, 0, len(records))
	for _, rec := range records {
		if satisfiesAll(rec, preds) {
			out = append(out, rec)
		}
	}
	return out, preds.Descriptions()
}

func satisfiesAll(rec record.Record, preds predicate.Set) bool {
	for _, p := range preds {
		if !satisfies(rec, p) {
			return false
		}
	}
	return true
}

func satisfies(rec record.Record, p predicate.Predicate) bool {
	switch p.Mode() {
	case predicate.ModeNumber:
		n, ok := rec.Number(p.Field())
		return ok && n == p.Number()
	case predicate.ModeExact:
		if s, ok := rec.String(p.Field()); ok && s == p.Fragment() {
			return true
		}
		return anyEntry(rec, p.Field(), func(v string) bool { return v == p.Fragment() })
	default: // contains
		want := strings.ToLower(p.Fragment())
		if s, ok := rec.String(p.Field()); ok &&
			strings.Contains(strings.ToLower(s), want) {
			return true
		}
		return anyEntry(rec, p.Field(), func(v string) bool {
			return strings.Contains(strings.ToLower(v), want)
		})
	}
}

// anyEntry applies the test to each entry of a multi-valued field; a field
// like email matches if any of its entries does.
func anyEntry(rec record.Record, field string, test func(string) bool) bool {
	for _, e := range rec.Values(field) {
		if test(e.Value) {
			return true
		}
	}
	return false
}
