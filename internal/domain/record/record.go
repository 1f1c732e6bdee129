// Package record models CRM records as opaque field maps.
//
// Pipedrive is loose about field shapes: the same logical field may arrive
// as a scalar, as a {"value": ...} wrapper, or as a list of
// {"value", "primary", "label"} objects (email, phone). All shape handling
// lives here, behind the accessors, so the filter and scoring engines never
// branch on shape themselves. Accessors only read; a Record is never
// mutated after it leaves the transport layer.
package record

import "github.com/spf13/cast"

// Record is one CRM entity instance. No schema is enforced; any field may
// be absent on any record.
type Record map[string]any

// Entry is one normalized element of a multi-valued field.
type Entry struct {
	Value   string
	Primary bool
	Label   string
}

// ID returns the record's numeric id, if present.
func (r Record) ID() (int64, bool) {
	v, ok := r["id"]
	if !ok {
		return 0, false
	}
	id, err := cast.ToInt64E(unwrapValue(v))
	if err != nil {
		return 0, false
	}
	return id, true
}

// String returns the named field as a string. Wrapped shapes
// ({"value": ...} or an org reference {"name": ..., "value": ...}) are
// unwrapped; multi-valued fields are not strings and report absent.
func (r Record) String(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	if m, isMap := v.(map[string]any); isMap {
		// Entity references carry a display name alongside the id.
		if name, nameOK := m["name"]; nameOK {
			if s, err := cast.ToStringE(name); err == nil && s != "" {
				return s, true
			}
		}
		v = m["value"]
	}
	switch v.(type) {
	case []any, map[string]any, nil:
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

// Number returns the named field as a number, unwrapping {"value": n}
// references so that org_id in both raw and wrapped form compares equal.
func (r Record) Number(field string) (float64, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, false
	}
	n, err := cast.ToFloat64E(unwrapValue(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Values returns the named field as a normalized multi-value list. A bare
// scalar is treated as a single-entry list so "email": "a@b.c" and
// "email": [{"value": "a@b.c"}] behave identically.
func (r Record) Values(field string) []Entry {
	v, ok := r[field]
	if !ok || v == nil {
		return nil
	}

	list, isList := v.([]any)
	if !isList {
		if s, err := cast.ToStringE(unwrapValue(v)); err == nil && s != "" {
			return []Entry{{Value: s}}
		}
		return nil
	}

	entries := make([]Entry, 0, len(list))
	for _, item := range list {
		m, isMap := item.(map[string]any)
		if !isMap {
			if s, err := cast.ToStringE(item); err == nil && s != "" {
				entries = append(entries, Entry{Value: s})
			}
			continue
		}
		s, err := cast.ToStringE(m["value"])
		if err != nil || s == "" {
			continue
		}
		entries = append(entries, Entry{
			Value:   s,
			Primary: cast.ToBool(m["primary"]),
			Label:   cast.ToString(m["label"]),
		})
	}
	return entries
}

// OrganizationName returns the record's organization display name,
// whichever of the flattened and nested shapes the API used.
func (r Record) OrganizationName() (string, bool) {
	if s, ok := r.String("org_name"); ok {
		return s, true
	}
	return r.String("org_id")
}

func unwrapValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		return m["value"]
	}
	return v
}
