// Package predicate holds the value objects for strict, inclusion-gating
// record filtering. A record matches a Set only if it satisfies every
// predicate in it (AND semantics).
package predicate

import "fmt"

// MaxPerSet is the maximum number of predicates in one set.
const MaxPerSet = 16

// Mode selects how a predicate compares against a field value.
type Mode string

const (
	// ModeContains is a case-insensitive substring test.
	ModeContains Mode = "contains"
	// ModeExact requires exact string equality.
	ModeExact Mode = "exact"
	// ModeNumber requires numeric equality after shape normalization.
	ModeNumber Mode = "number"
)

// Predicate is a single field-level match condition.
type Predicate struct {
	field    string
	fragment string
	number   float64
	mode     Mode
}

// NewContains creates a case-insensitive substring predicate.
func NewContains(field, fragment string) (Predicate, error) {
	if field == "" {
		return Predicate{}, fmt.Errorf("predicate field is required")
	}
	if fragment == "" {
		return Predicate{}, fmt.Errorf("fragment is required for field %q", field)
	}
	return Predicate{field: field, fragment: fragment, mode: ModeContains}, nil
}

// NewExact creates an exact string equality predicate.
func NewExact(field, value string) (Predicate, error) {
	if field == "" {
		return Predicate{}, fmt.Errorf("predicate field is required")
	}
	if value == "" {
		return Predicate{}, fmt.Errorf("value is required for field %q", field)
	}
	return Predicate{field: field, fragment: value, mode: ModeExact}, nil
}

// NewNumber creates a numeric equality predicate.
func NewNumber(field string, value float64) (Predicate, error) {
	if field == "" {
		return Predicate{}, fmt.Errorf("predicate field is required")
	}
	return Predicate{field: field, number: value, mode: ModeNumber}, nil
}

// Field returns the targeted field name.
func (p Predicate) Field() string { return p.field }

// Fragment returns the string to match (contains and exact modes).
func (p Predicate) Fragment() string { return p.fragment }

// Number returns the numeric value to compare (number mode).
func (p Predicate) Number() float64 { return p.number }

// Mode returns the comparison mode.
func (p Predicate) Mode() Mode { return p.mode }

// Describe renders the predicate for response transparency.
func (p Predicate) Describe() string {
	switch p.mode {
	case ModeExact:
		return fmt.Sprintf("%s equals %q", p.field, p.fragment)
	case ModeNumber:
		return fmt.Sprintf("%s = %v", p.field, p.number)
	default:
		return fmt.Sprintf("%s contains %q", p.field, p.fragment)
	}
}

// Set is an AND-combined group of predicates.
type Set []Predicate

// NewSet validates and creates a predicate set.
func NewSet(preds ...Predicate) (Set, error) {
	if len(preds) > MaxPerSet {
		return nil, fmt.Errorf("too many predicates (max %d)", MaxPerSet)
	}
	return Set(preds), nil
}

// IsEmpty reports whether the set gates nothing.
func (s Set) IsEmpty() bool { return len(s) == 0 }

// Descriptions returns human-readable renderings of every predicate, in
// set order.
func (s Set) Descriptions() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Describe()
	}
	return out
}
