package search

import (
	"testing"

	"github.com/crmforge/pipedex/internal/domain/record"
	"github.com/crmforge/pipedex/internal/domain/search/predicate"
)

func mustContains(t *testing.T, field, fragment string) predicate.Predicate {
	t.Helper()
	p, err := predicate.NewContains(field, fragment)
	if err != nil {
		t.Fatalf("NewContains(%q, %q): %v", field, fragment, err)
	}
	return p
}

func mustExact(t *testing.T, field, value string) predicate.Predicate {
	t.Helper()
	p, err := predicate.NewExact(field, value)
	if err != nil {
		t.Fatalf("NewExact(%q, %q): %v", field, value, err)
	}
	return p
}

func mustNumber(t *testing.T, field string, value float64) predicate.Predicate {
	t.Helper()
	p, err := predicate.NewNumber(field, value)
	if err != nil {
		t.Fatalf("NewNumber(%q, %v): %v", field, value, err)
	}
	return p
}

func TestFilter_EmptySetReturnsInput(t *testing.T) {
	records := []record.Record{
		{"id": 1, "name": "Anna"},
		{"id": 2, "name": "Bo"},
	}

	out, applied := Filter(records, predicate.Set{})

	if len(out) != 2 {
		t.Fatalf("expected all records back, got %d", len(out))
	}
	if applied != nil {
		t.Errorf("expected no applied descriptions, got %v", applied)
	}
}

func TestFilter_ContainsCaseInsensitive(t *testing.T) {
	records := []record.Record{
		{"id": 1, "name": "Haleon GmbH"},
		{"id": 2, "name": "Acme Inc"},
	}

	out, applied := Filter(records, predicate.Set{mustContains(t, "name", "haleon")})

	if len(out) != 1 {
		t.Fatalf("expected 1 match, got %d", len(out))
	}
	if id, _ := out[0].ID(); id != 1 {
		t.Errorf("expected record 1, got %d", id)
	}
	if len(applied) != 1 {
		t.Errorf("expected 1 applied description, got %v", applied)
	}
}

func TestFilter_AndSemantics(t *testing.T) {
	records := []record.Record{
		{"id": 1, "name": "Piotr Nowak", "org_name": "Haleon"},
		{"id": 2, "name": "Piotr Kowalski", "org_name": "Acme"},
		{"id": 3, "name": "Anna Lis", "org_name": "Haleon"},
	}

	out, _ := Filter(records, predicate.Set{
		mustContains(t, "name", "piotr"),
		mustContains(t, "org_name", "haleon"),
	})

	if len(out) != 1 {
		t.Fatalf("expected only the record matching both predicates, got %d", len(out))
	}
	if id, _ := out[0].ID(); id != 1 {
		t.Errorf("expected record 1, got %d", id)
	}
}

func TestFilter_PreservesInputOrder(t *testing.T) {
	records := []record.Record{
		{"id": 30, "name": "C match"},
		{"id": 10, "name": "A match"},
		{"id": 20, "name": "B match"},
	}

	out, _ := Filter(records, predicate.Set{mustContains(t, "name", "match")})

	want := []int64{30, 10, 20}
	for i, rec := range out {
		if id, _ := rec.ID(); id != want[i] {
			t.Errorf("position %d: expected id %d, got %d", i, want[i], id)
		}
	}
}

func TestFilter_MultiValueFieldMatchesAnyEntry(t *testing.T) {
	records := []record.Record{
		{"id": 1, "email": []any{
			map[string]any{"value": "work@acme.com", "primary": true},
			map[string]any{"value": "piotr@home.pl"},
		}},
		{"id": 2, "email": []any{
			map[string]any{"value": "other@acme.com"},
		}},
	}

	out, _ := Filter(records, predicate.Set{mustContains(t, "email", "home.pl")})

	if len(out) != 1 {
		t.Fatalf("expected 1 match via non-primary entry, got %d", len(out))
	}
	if id, _ := out[0].ID(); id != 1 {
		t.Errorf("expected record 1, got %d", id)
	}
}

func TestFilter_ScalarEmailStillMatches(t *testing.T) {
	records := []record.Record{
		{"id": 1, "email": "solo@acme.com"},
	}

	out, _ := Filter(records, predicate.Set{mustContains(t, "email", "acme")})

	if len(out) != 1 {
		t.Fatalf("expected scalar email shape to match, got %d records", len(out))
	}
}

func TestFilter_NumberMatchesWrappedReference(t *testing.T) {
	records := []record.Record{
		{"id": 1, "org_id": map[string]any{"name": "Haleon", "value": float64(42)}},
		{"id": 2, "org_id": float64(42)},
		{"id": 3, "org_id": float64(7)},
	}

	out, _ := Filter(records, predicate.Set{mustNumber(t, "org_id", 42)})

	if len(out) != 2 {
		t.Fatalf("expected wrapped and raw org_id 42 to match, got %d", len(out))
	}
}

func TestFilter_ExactMode(t *testing.T) {
	records := []record.Record{
		{"id": 1, "status": "open"},
		{"id": 2, "status": "won"},
		{"id": 3, "status": "reopened"},
	}

	out, _ := Filter(records, predicate.Set{mustExact(t, "status", "open")})

	if len(out) != 1 {
		t.Fatalf("expected exact match only, got %d", len(out))
	}
	if id, _ := out[0].ID(); id != 1 {
		t.Errorf("expected record 1, got %d", id)
	}
}

func TestFilter_MissingFieldFailsPredicate(t *testing.T) {
	records := []record.Record{
		{"id": 1, "name": "Anna"},
		{"id": 2}, // no name at all
	}

	out, _ := Filter(records, predicate.Set{mustContains(t, "name", "anna")})

	if len(out) != 1 {
		t.Fatalf("record without the field must not match, got %d records", len(out))
	}
}

func TestFilter_NoMatchesReturnsEmptyNotNilDescriptions(t *testing.T) {
	records := []record.Record{{"id": 1, "name": "Anna"}}

	out, applied := Filter(records, predicate.Set{mustContains(t, "name", "zzz")})

	if len(out) != 0 {
		t.Fatalf("expected no matches, got %d", len(out))
	}
	if len(applied) != 1 {
		t.Errorf("applied descriptions must still report the predicate, got %v", applied)
	}
}

func TestFilter_DoesNotMutateRecords(t *testing.T) {
	rec := record.Record{"id": 1, "name": "Anna", "extra": "untouched"}

	out, _ := Filter([]record.Record{rec}, predicate.Set{mustContains(t, "name", "anna")})

	if len(out) != 1 {
		t.Fatal("expected the record to pass")
	}
	if len(out[0]) != 3 || out[0]["extra"] != "untouched" {
		t.Errorf("record fields changed: %v", out[0])
	}
}
