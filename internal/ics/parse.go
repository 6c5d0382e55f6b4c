package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	ical "github.com/arran4/golang-ical"

	"calscrape/internal/model"
)

// ErrParse marks a document that is not well-formed iCalendar. The driver
// treats the whole feed as empty in that case.
var ErrParse = errors.New("calendar parse failed")

// customFieldProp is the vendor extension property carrying custom fields.
// Each instance has ID/NAME/TYPE parameters plus a value.
const customFieldProp = "X-TRUMBA-CUSTOMFIELD"

// Entry wraps one VEVENT and exposes the two generic lookup strategies every
// concrete field getter is built from: first-value plain-field lookup by
// property name and first-match custom-field lookup by numeric ID.
type Entry struct {
	ev *ical.VEvent
}

// CustomField is one vendor custom-field instance on an event.
type CustomField struct {
	ID    int
	Name  string
	Kind  string
	Value string
}

// Parse parses a raw feed document into its event entries.
func Parse(body []byte) ([]Entry, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrParse)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	events := cal.Events()
	entries := make([]Entry, 0, len(events))
	for _, ev := range events {
		entries = append(entries, Entry{ev: ev})
	}
	return entries, nil
}

// Value returns the first value for the named property, or no value if the
// property is absent. Multiple instances of the same property are possible
// in iCalendar; only the head is taken.
func (e Entry) Value(key string) model.Field {
	for _, p := range e.ev.Properties {
		if strings.EqualFold(p.IANAToken, key) {
			return model.String(p.Value)
		}
	}
	return model.None()
}

// CustomValue returns the value of the first custom field whose ID parameter
// equals id, or no value if none matches. The ID parameter is parsed as an
// integer; a non-numeric ID is malformed vendor data and is reported as an
// error so the caller can skip the event.
func (e Entry) CustomValue(id int) (model.Field, error) {
	for _, p := range e.ev.Properties {
		if !strings.EqualFold(p.IANAToken, customFieldProp) {
			continue
		}
		fid, err := customFieldID(p.ICalParameters)
		if err != nil {
			return model.None(), err
		}
		if fid == id {
			return model.String(p.Value), nil
		}
	}
	return model.None(), nil
}

// CustomFields enumerates every custom field on the event as its
// (ID, NAME, TYPE, value) tuple, in document order.
func (e Entry) CustomFields() ([]CustomField, error) {
	var out []CustomField
	for _, p := range e.ev.Properties {
		if !strings.EqualFold(p.IANAToken, customFieldProp) {
			continue
		}
		fid, err := customFieldID(p.ICalParameters)
		if err != nil {
			return nil, err
		}
		out = append(out, CustomField{
			ID:    fid,
			Name:  firstParam(p.ICalParameters, "NAME"),
			Kind:  firstParam(p.ICalParameters, "TYPE"),
			Value: p.Value,
		})
	}
	return out, nil
}

// StartAt returns the parsed DTSTART, or no value when absent/unparseable.
func (e Entry) StartAt() model.TimeField {
	t, err := e.ev.GetStartAt()
	if err != nil {
		return model.TimeField{}
	}
	return model.TimeField{Value: t, Valid: true}
}

// EndAt returns the parsed DTEND, or no value when absent/unparseable.
func (e Entry) EndAt() model.TimeField {
	t, err := e.ev.GetEndAt()
	if err != nil {
		return model.TimeField{}
	}
	return model.TimeField{Value: t, Valid: true}
}

func customFieldID(params map[string][]string) (int, error) {
	raw := firstParam(params, "ID")
	fid, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("malformed custom field ID %q: %v", raw, err)
	}
	return fid, nil
}

func firstParam(params map[string][]string, name string) string {
	if params == nil {
		return ""
	}
	vals := params[name]
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
