package search

import (
	"errors"
	"strings"
	"testing"

	"github.com/crmforge/pipedex/internal/domain"
	"github.com/crmforge/pipedex/internal/domain/record"
	"github.com/crmforge/pipedex/internal/domain/search/match"
)

func mustQuery(t *testing.T, name, org, email, phone string) match.Query {
	t.Helper()
	q, err := match.NewQuery(name, org, email, phone)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	return q
}

func TestFuzzyFind_EmptyQueryRejected(t *testing.T) {
	_, err := FuzzyFind(nil, match.Query{}, 0)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected domain.ErrInvalidQuery, got %v", err)
	}
}

func TestFuzzyFind_CombinedScoreAndReasons(t *testing.T) {
	records := []record.Record{
		{"id": 1, "name": "Piotr Nowak", "org_name": "Haleon"},
		{"id": 2, "name": "Piotr Kowalski", "org_name": "Acme"},
		{"id": 3, "name": "Anna Lis", "org_name": "Haleon"},
	}

	scored, err := FuzzyFind(records, mustQuery(t, "piotr", "haleon", "", ""), 0)
	if err != nil {
		t.Fatalf("FuzzyFind: %v", err)
	}

	if len(scored) != 3 {
		t.Fatalf("expected 3 scored records (each matches something), got %d", len(scored))
	}

	// Record 1 matches both fields: 10 + 8.
	best := scored[0]
	if id, _ := best.Record().ID(); id != 1 {
		t.Fatalf("expected record 1 first, got %d", id)
	}
	if best.Score() != match.WeightName+match.WeightOrganization {
		t.Errorf("expected score %d, got %d", match.WeightName+match.WeightOrganization, best.Score())
	}
	if len(best.Reasons()) != 2 {
		t.Errorf("expected 2 match reasons, got %v", best.Reasons())
	}
}

func TestFuzzyFind_ExcludesZeroScores(t *testing.T) {
	records := []record.Record{
		{"id": 1, "name": "Piotr Nowak"},
		{"id": 2, "name": "Anna Lis"},
	}

	scored, err := FuzzyFind(records, mustQuery(t, "piotr", "", "", ""), 0)
	if err != nil {
		t.Fatalf("FuzzyFind: %v", err)
	}

	if len(scored) != 1 {
		t.Fatalf("expected only matching records, got %d", len(scored))
	}
}

func TestFuzzyFind_WordPrefixMatches(t *testing.T) {
	records := []record.Record{
		{"id": 1, "name": "Katarzyna Nowakowska"},
	}

	// "nowak" starts the second word, not the full name.
	scored, err := FuzzyFind(records, mustQuery(t, "nowak", "", "", ""), 0)
	if err != nil {
		t.Fatalf("FuzzyFind: %v", err)
	}
	if len(scored) != 1 {
		t.Fatalf("expected word-prefix match, got %d records", len(scored))
	}
}

func TestFuzzyFind_EmailSubstringOnly(t *testing.T) {
	records := []record.Record{
		{"id": 1, "email": []any{map[string]any{"value": "piotr.nowak@haleon.com"}}},
	}

	scored, err := FuzzyFind(records, mustQuery(t, "", "", "haleon", ""), 0)
	if err != nil {
		t.Fatalf("FuzzyFind: %v", err)
	}
	if len(scored) != 1 {
		t.Fatalf("expected email fragment match, got %d", len(scored))
	}
	if scored[0].Score() != match.WeightEmail {
		t.Errorf("expected score %d, got %d", match.WeightEmail, scored[0].Score())
	}
}

func TestFuzzyFind_PhoneFragment(t *testing.T) {
	records := []record.Record{
		{"id": 1, "phone": []any{map[string]any{"value": "+48 600 100 200"}}},
		{"id": 2, "phone": []any{map[string]any{"value": "+48 700 999 999"}}},
	}

	scored, err := FuzzyFind(records, mustQuery(t, "", "", "", "600 100"), 0)
	if err != nil {
		t.Fatalf("FuzzyFind: %v", err)
	}
	if len(scored) != 1 {
		t.Fatalf("expected 1 phone match, got %d", len(scored))
	}
}

func TestFuzzyFind_StableOrderForEqualScores(t *testing.T) {
	records := []record.Record{
		{"id": 10, "name": "Piotr A"},
		{"id": 20, "name": "Piotr B"},
		{"id": 30, "name": "Piotr C"},
	}

	scored, err := FuzzyFind(records, mustQuery(t, "piotr", "", "", ""), 0)
	if err != nil {
		t.Fatalf("FuzzyFind: %v", err)
	}

	want := []int64{10, 20, 30}
	for i, s := range scored {
		if id, _ := s.Record().ID(); id != want[i] {
			t.Errorf("position %d: expected id %d, got %d", i, want[i], id)
		}
	}
}

func TestFuzzyFind_DescendingScores(t *testing.T) {
	records := []record.Record{
		{"id": 1, "name": "Piotr"},                         // 10
		{"id": 2, "name": "Piotr", "org_name": "Haleon"},   // 18
		{"id": 3, "org_name": "Haleon"},                    // 8
		{"id": 4, "name": "Piotr", "org_name": "Haleonix"}, // 18
	}

	scored, err := FuzzyFind(records, mustQuery(t, "piotr", "haleon", "", ""), 0)
	if err != nil {
		t.Fatalf("FuzzyFind: %v", err)
	}

	for i := 1; i < len(scored); i++ {
		if scored[i].Score() > scored[i-1].Score() {
			t.Fatalf("scores not descending at %d: %d then %d", i, scored[i-1].Score(), scored[i].Score())
		}
	}
	// Stable: record 2 before record 4 (equal scores).
	if id, _ := scored[0].Record().ID(); id != 2 {
		t.Errorf("expected record 2 first, got %d", id)
	}
	if id, _ := scored[1].Record().ID(); id != 4 {
		t.Errorf("expected record 4 second, got %d", id)
	}
}

func TestFuzzyFind_CapApplied(t *testing.T) {
	var records []record.Record
	for i := 0; i < 30; i++ {
		records = append(records, record.Record{"id": i + 1, "name": "Piotr"})
	}

	scored, err := FuzzyFind(records, mustQuery(t, "piotr", "", "", ""), 0)
	if err != nil {
		t.Fatalf("FuzzyFind: %v", err)
	}
	if len(scored) != DefaultFuzzyCap {
		t.Fatalf("expected default cap %d, got %d", DefaultFuzzyCap, len(scored))
	}

	scored, err = FuzzyFind(records, mustQuery(t, "piotr", "", "", ""), 5)
	if err != nil {
		t.Fatalf("FuzzyFind: %v", err)
	}
	if len(scored) != 5 {
		t.Fatalf("expected explicit cap 5, got %d", len(scored))
	}
}

func TestFuzzyFind_ReasonsNameFieldAndFragment(t *testing.T) {
	records := []record.Record{
		{"id": 1, "name": "Piotr Nowak"},
	}

	scored, err := FuzzyFind(records, mustQuery(t, "piotr", "", "", ""), 0)
	if err != nil {
		t.Fatalf("FuzzyFind: %v", err)
	}
	if len(scored) != 1 || len(scored[0].Reasons()) != 1 {
		t.Fatalf("expected one reason, got %v", scored[0].Reasons())
	}
	reason := scored[0].Reasons()[0]
	if !strings.Contains(reason, "Piotr Nowak") || !strings.Contains(reason, "piotr") {
		t.Errorf("reason should carry matched text and fragment, got %q", reason)
	}
}

func TestFuzzyMatch_Rules(t *testing.T) {
	cases := []struct {
		text     string
		fragment string
		want     bool
	}{
		{"Piotr Nowak", "piotr", true}, // case-insensitive
		{"Piotr Nowak", "otr", true},   // inner substring
		{"Katarzyna Nowakowska", "now", true},
		{"Piotr Nowak", "wakx", false},
		{"Piotr Nowak", "anna", false},
	}
	for _, c := range cases {
		if got := fuzzyMatch(c.text, c.fragment); got != c.want {
			t.Errorf("fuzzyMatch(%q, %q) = %v, want %v", c.text, c.fragment, got, c.want)
		}
	}
}
