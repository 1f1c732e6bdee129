// Package match holds the weighted multi-field query used for ranked
// fuzzy search. Unlike predicates, matched fields accumulate score rather
// than gate inclusion: one matching field is enough to include a record.
package match

import "github.com/crmforge/pipedex/internal/domain"

// Field weights reflect specificity: a name hit says more than a phone
// fragment. A record's score is the sum of the weights of its matched
// fields.
const (
	WeightName         = 10
	WeightOrganization = 8
	WeightEmail        = 7
	WeightPhone        = 6
)

// Query is a set of optional per-field fragments. At least one must be
// non-empty.
type Query struct {
	name         string
	organization string
	email        string
	phone        string
}

// NewQuery validates and creates a Query. All fields empty is a usage
// error (domain.ErrInvalidQuery), not an empty result.
func NewQuery(name, organization, email, phone string) (Query, error) {
	q := Query{name: name, organization: organization, email: email, phone: phone}
	if q.IsEmpty() {
		return Query{}, domain.ErrInvalidQuery
	}
	return q, nil
}

// Name returns the name fragment.
func (q Query) Name() string { return q.name }

// Organization returns the organization fragment.
func (q Query) Organization() string { return q.organization }

// Email returns the email fragment.
func (q Query) Email() string { return q.email }

// Phone returns the phone fragment.
func (q Query) Phone() string { return q.phone }

// IsEmpty reports whether no fragment is set.
func (q Query) IsEmpty() bool {
	return q.name == "" && q.organization == "" && q.email == "" && q.phone == ""
}
