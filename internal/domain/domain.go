package domain

import "fmt"

// KeyPrefix namespaces all Redis keys written by pipedex.
const KeyPrefix = "pipedex:"

// EntityKind identifies a Pipedrive record type.
type EntityKind string

const (
	KindDeal         EntityKind = "deal"
	KindPerson       EntityKind = "person"
	KindOrganization EntityKind = "organization"
	KindActivity     EntityKind = "activity"
	KindNote         EntityKind = "note"
	KindLead         EntityKind = "lead"
)

// Endpoint returns the Pipedrive v1 API path segment for the kind.
func (k EntityKind) Endpoint() string {
	switch k {
	case KindDeal:
		return "deals"
	case KindPerson:
		return "persons"
	case KindOrganization:
		return "organizations"
	case KindActivity:
		return "activities"
	case KindNote:
		return "notes"
	case KindLead:
		return "leads"
	}
	return string(k)
}

// ParseEntityKind validates a caller-supplied entity kind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case KindDeal, KindPerson, KindOrganization, KindActivity, KindNote, KindLead:
		return EntityKind(s), nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}
