package scrape

import (
	"fmt"
	"strings"

	"calscrape/internal/ics"
	"calscrape/internal/model"
)

// ExtractionError marks malformed vendor data inside a single event. The
// driver skips that one event and continues with the rest of the feed.
type ExtractionError struct {
	UID string
	Err error
}

func (e *ExtractionError) Error() string {
	if e.UID == "" {
		return fmt.Sprintf("extracting event: %v", e.Err)
	}
	return fmt.Sprintf("extracting event %s: %v", e.UID, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Every concrete field getter is generated from one of two generic lookup
// strategies, parameterized by these declarative tables. plainFieldKeys maps
// logical record fields to the calendar property they are read from;
// customFieldIDs maps them to the vendor custom-field ID.
var plainFieldKeys = map[string]string{
	"event_uid":     "UID",
	"summary":       "SUMMARY",
	"description":   "DESCRIPTION",
	"location":      "LOCATION",
	"categories":    "CATEGORIES",
	"all_day_event": "X-MICROSOFT-ALLDAYEVENT",
}

var customFieldIDs = map[string]int{
	"event_type":            12,
	"website_url":           3109,
	"student_admission_fee": 3111,
	"general_admission_fee": 3124,
	"extra_categories":      3138,
	"open_to_public":        12515,
	"ticket_sales_url":      13402,
	"contact_name":          13404,
	"contact_phone":         13405,
	"contact_email":         13406,
}

// ExtractRecord maps one calendar entry to a normalized Record. The only
// error condition is malformed custom-field data, reported as an
// *ExtractionError.
func ExtractRecord(entry ics.Entry) (*model.Record, error) {
	var firstErr error

	getter := func(field string) model.Field {
		return entry.Value(plainFieldKeys[field])
	}
	customGetter := func(field string) model.Field {
		f, err := entry.CustomValue(customFieldIDs[field])
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return f
	}

	rec := &model.Record{
		EventUID:    getter("event_uid"),
		Summary:     getter("summary"),
		Description: getter("description"),
		Location:    getter("location"),
		Start:       entry.StartAt(),
		End:         entry.EndAt(),

		EventType:           customGetter("event_type"),
		WebsiteURL:          customGetter("website_url"),
		StudentAdmissionFee: customGetter("student_admission_fee"),
		GeneralAdmissionFee: customGetter("general_admission_fee"),
		TicketSalesURL:      customGetter("ticket_sales_url"),

		AllDayEvent:  model.ParseBool(getter("all_day_event")),
		OpenToPublic: model.ParseBool(customGetter("open_to_public")),

		ContactName:  coalesce(customGetter("contact_name")),
		ContactPhone: coalesce(customGetter("contact_phone")),
		ContactEmail: coalesce(customGetter("contact_email")),
	}

	rec.Categories = model.MergeCategories(
		splitCategories(getter("categories")),
		splitCategories(customGetter("extra_categories")),
	)

	if firstErr != nil {
		return nil, &ExtractionError{UID: rec.EventUID.Value, Err: firstErr}
	}
	return rec, nil
}

// splitCategories splits a comma-space separated category list. An absent or
// empty source contributes nothing.
func splitCategories(f model.Field) []string {
	if !f.Valid || f.Value == "" {
		return nil
	}
	return strings.Split(f.Value, ", ")
}

// coalesce maps "no value" to a present empty string.
func coalesce(f model.Field) model.Field {
	if !f.Valid {
		return model.String("")
	}
	return f
}
