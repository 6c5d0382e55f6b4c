package model

import (
	"sort"
	"time"
)

// Field is an optional string value. A missing field is Valid == false,
// never an empty string; the contact fields are the one exception, coalesced
// to a present empty string at extraction time so that equality-based
// contact lookups behave consistently.
type Field struct {
	Value string
	Valid bool
}

// String returns a present Field.
func String(v string) Field {
	return Field{Value: v, Valid: true}
}

// None is the "no value" sentinel.
func None() Field {
	return Field{}
}

// TimeField is an optional timestamp.
type TimeField struct {
	Value time.Time
	Valid bool
}

// Bool is a tri-state boolean. The meaning of BoolUnset depends on the
// field: for AllDayEvent it means "use the storage default"; for
// OpenToPublic it means NULL.
type Bool int

const (
	BoolUnset Bool = iota
	BoolTrue
	BoolFalse
)

// ParseBool maps the vendor's "TRUE"/"FALSE" coding onto Bool. Anything
// else, including an absent value, is BoolUnset.
func ParseBool(f Field) Bool {
	if !f.Valid {
		return BoolUnset
	}
	switch f.Value {
	case "TRUE":
		return BoolTrue
	case "FALSE":
		return BoolFalse
	default:
		return BoolUnset
	}
}

// Record is the normalized, flat representation of one calendar event. It is
// built fresh per VEVENT per run, drives exactly one upsert sequence, and is
// then discarded.
type Record struct {
	EventUID    Field
	Summary     Field
	Description Field
	Location    Field
	Start       TimeField
	End         TimeField

	EventType           Field
	WebsiteURL          Field
	StudentAdmissionFee Field
	GeneralAdmissionFee Field
	TicketSalesURL      Field

	AllDayEvent  Bool
	OpenToPublic Bool

	// ContactName/Phone/Email are always Valid (coalesced to "").
	ContactName  Field
	ContactPhone Field
	ContactEmail Field

	// Categories is the deduplicated union of the plain categories field and
	// the custom extra-categories field. Sorted for stable iteration order.
	Categories []string
}

// HasContactInfo reports whether any contact field is non-empty. An event
// with no contact info stores a NULL contact reference instead of pointing
// at an all-empty contact row.
func (r *Record) HasContactInfo() bool {
	return r.ContactName.Value != "" || r.ContactPhone.Value != "" || r.ContactEmail.Value != ""
}

// HasLocation reports whether the location field is present.
func (r *Record) HasLocation() bool {
	return r.Location.Valid
}

// MergeCategories combines category names from any number of sources into a
// deduplicated, sorted set. Duplicates across sources collapse; empty names
// are dropped.
func MergeCategories(sources ...[]string) []string {
	seen := make(map[string]struct{})
	for _, src := range sources {
		for _, name := range src {
			if name == "" {
				continue
			}
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
