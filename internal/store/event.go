package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"calscrape/internal/model"
)

// The events table has a lot of columns. Rather than repeating them in the
// column list, the VALUES clause and the conflict-update clause, one table
// drives all three. arg is the named-parameter key ("end" is a reserved word
// in SQL, so its column needs quoting and a different arg name).
type eventColumn struct {
	col string
	arg string
}

var eventColumns = []eventColumn{
	{"all_day_event", "all_day_event"},
	{"open_to_public", "open_to_public"},
	{"summary", "summary"},
	{"description", "description"},
	{"location_id", "location_id"},
	{"start", "start"},
	{`"end"`, "end_time"},
	{"event_type_id", "event_type_id"},
	{"general_admission_fee", "general_admission_fee"},
	{"student_admission_fee", "student_admission_fee"},
	{"website_url", "website_url"},
	{"ticket_sales_url", "ticket_sales_url"},
	{"contact_id", "contact_id"},
}

// buildEventUpsert renders the events statement: insert keyed by event_uid,
// update of every non-key column on conflict, id returned either way. An
// unset all-day flag is rendered as a literal DEFAULT token so the column
// falls back to the schema default (named parameters cannot carry DEFAULT).
func buildEventUpsert(defaultAllDay bool) string {
	cols := make([]string, 0, len(eventColumns)+1)
	vals := make([]string, 0, len(eventColumns)+1)
	sets := make([]string, 0, len(eventColumns))

	cols = append(cols, "event_uid")
	vals = append(vals, "@event_uid")

	for _, c := range eventColumns {
		cols = append(cols, c.col)
		if c.col == "all_day_event" && defaultAllDay {
			vals = append(vals, "DEFAULT")
		} else {
			vals = append(vals, "@"+c.arg)
		}
		sets = append(sets, c.col+" = EXCLUDED."+c.col)
	}

	return fmt.Sprintf(
		"INSERT INTO events (%s)\n    VALUES (%s)\n    ON CONFLICT (event_uid) DO UPDATE SET %s\n    RETURNING event_id",
		strings.Join(cols, ", "),
		strings.Join(vals, ", "),
		strings.Join(sets, ", "),
	)
}

// UpsertEvent inserts or updates the event row for the record's UID and
// returns the event's surrogate id. On conflict every non-key column is
// replaced, so re-scraping a feed refreshes previously-ingested events.
func (s *Store) UpsertEvent(ctx context.Context, rec *model.Record, locationID *int64, eventTypeID int64, contactID *int64) (int64, error) {
	args := pgx.NamedArgs{
		"event_uid":             nullableField(rec.EventUID),
		"all_day_event":         nullableBool(rec.AllDayEvent),
		"open_to_public":        nullableBool(rec.OpenToPublic),
		"summary":               nullableField(rec.Summary),
		"description":           nullableField(rec.Description),
		"location_id":           locationID,
		"start":                 nullableTime(rec.Start),
		"end_time":              nullableTime(rec.End),
		"event_type_id":         eventTypeID,
		"general_admission_fee": nullableField(rec.GeneralAdmissionFee),
		"student_admission_fee": nullableField(rec.StudentAdmissionFee),
		"website_url":           nullableField(rec.WebsiteURL),
		"ticket_sales_url":      nullableField(rec.TicketSalesURL),
		"contact_id":            contactID,
	}

	statement := buildEventUpsert(rec.AllDayEvent == model.BoolUnset)

	var id int64
	if err := s.db.QueryRow(ctx, statement, args).Scan(&id); err != nil {
		return 0, fmt.Errorf("upserting event %s: %w", rec.EventUID.Value, err)
	}
	return id, nil
}

func nullableField(f model.Field) any {
	if !f.Valid {
		return nil
	}
	return f.Value
}

func nullableTime(t model.TimeField) any {
	if !t.Valid {
		return nil
	}
	return t.Value
}

func nullableBool(b model.Bool) any {
	switch b {
	case model.BoolTrue:
		return true
	case model.BoolFalse:
		return false
	default:
		return nil
	}
}
