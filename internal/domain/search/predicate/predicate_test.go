package predicate

import (
	"strings"
	"testing"
)

func TestNewContains_Validation(t *testing.T) {
	if _, err := NewContains("", "x"); err == nil {
		t.Error("expected error for empty field")
	}
	if _, err := NewContains("name", ""); err == nil {
		t.Error("expected error for empty fragment")
	}
	if _, err := NewContains("name", "x"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewExact_Validation(t *testing.T) {
	if _, err := NewExact("status", ""); err == nil {
		t.Error("expected error for empty value")
	}
}

func TestNewNumber_AllowsZero(t *testing.T) {
	// Zero is a legitimate comparison value, only the field is required.
	if _, err := NewNumber("org_id", 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := NewNumber("", 1); err == nil {
		t.Error("expected error for empty field")
	}
}

func TestDescribe(t *testing.T) {
	contains, _ := NewContains("name", "piotr")
	exact, _ := NewExact("status", "open")
	number, _ := NewNumber("org_id", 42)

	if got := contains.Describe(); got != `name contains "piotr"` {
		t.Errorf("contains description: %q", got)
	}
	if got := exact.Describe(); got != `status equals "open"` {
		t.Errorf("exact description: %q", got)
	}
	if got := number.Describe(); !strings.Contains(got, "org_id = 42") {
		t.Errorf("number description: %q", got)
	}
}

func TestNewSet_TooMany(t *testing.T) {
	preds := make([]Predicate, MaxPerSet+1)
	for i := range preds {
		p, _ := NewContains("name", "x")
		preds[i] = p
	}

	if _, err := NewSet(preds...); err == nil {
		t.Fatal("expected error above MaxPerSet")
	}
	if _, err := NewSet(preds[:MaxPerSet]...); err != nil {
		t.Fatalf("unexpected error at MaxPerSet: %v", err)
	}
}

func TestSet_Descriptions(t *testing.T) {
	p1, _ := NewContains("name", "a")
	p2, _ := NewExact("status", "won")
	set, _ := NewSet(p1, p2)

	descs := set.Descriptions()
	if len(descs) != 2 {
		t.Fatalf("expected 2 descriptions, got %d", len(descs))
	}
	if descs[0] != p1.Describe() || descs[1] != p2.Describe() {
		t.Errorf("descriptions out of order: %v", descs)
	}

	var empty Set
	if empty.Descriptions() != nil {
		t.Error("empty set should describe nothing")
	}
	if !empty.IsEmpty() {
		t.Error("empty set should report IsEmpty")
	}
}
