// Package store implements the upsert engine against the PostgreSQL schema.
//
// The schema itself is owned externally; this package depends on the
// natural-key uniqueness constraints it declares: locations(name),
// event_types(name), contacts(name, phone, email), categories(name),
// events(event_uid), event_categories(event_id, category_id) and
// calendar_event_ids(event_uid).
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrLookupInconsistency marks a dimension row that is absent immediately
// after its conflict-tolerant insert, indicating a race or a constraint
// mismatch. The driver skips the offending event and continues.
var ErrLookupInconsistency = errors.New("dimension row missing after insert")

// DBTX is the subset of pgx behavior the store needs. Both *pgxpool.Pool
// and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store wraps a database handle with the scraper's statements.
type Store struct {
	db DBTX
}

func New(db DBTX) *Store {
	return &Store{db: db}
}

const (
	insertLocationSQL = `INSERT INTO locations (name) VALUES ($1) ON CONFLICT DO NOTHING`
	selectLocationSQL = `SELECT location_id FROM locations WHERE name = $1`

	insertEventTypeSQL = `INSERT INTO event_types (name) VALUES ($1) ON CONFLICT DO NOTHING`
	selectEventTypeSQL = `SELECT event_type_id FROM event_types WHERE name = $1`

	insertContactSQL = `INSERT INTO contacts (name, phone, email) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	selectContactSQL = `SELECT contact_id FROM contacts WHERE (name, phone, email) = ($1, $2, $3)`

	insertCategorySQL = `INSERT INTO categories (name) VALUES ($1) ON CONFLICT DO NOTHING`
	selectCategorySQL = `SELECT category_id FROM categories WHERE name = $1`

	linkEventCategorySQL = `INSERT INTO event_categories (event_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	recordEventUIDSQL = `INSERT INTO calendar_event_ids (event_id, event_uid) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	eventSeenSQL = `SELECT EXISTS (SELECT 1 FROM calendar_event_ids WHERE event_uid = $1)`

	calendarURLsSQL = `SELECT url_text FROM calendar_urls`
)

// ensure performs the lookup-or-insert sequence shared by every dimension
// entity: a conflict-tolerant insert followed by a lookup of the surrogate
// id by natural key. A lookup that comes back empty right after the insert
// is reported as ErrLookupInconsistency.
func (s *Store) ensure(ctx context.Context, entity, insertSQL, selectSQL string, args ...any) (int64, error) {
	if _, err := s.db.Exec(ctx, insertSQL, args...); err != nil {
		return 0, fmt.Errorf("inserting %s: %w", entity, err)
	}

	var id int64
	err := s.db.QueryRow(ctx, selectSQL, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s %v", ErrLookupInconsistency, entity, args)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving %s id: %w", entity, err)
	}
	return id, nil
}

// EnsureLocation looks up or creates a location by name.
func (s *Store) EnsureLocation(ctx context.Context, name string) (int64, error) {
	return s.ensure(ctx, "location", insertLocationSQL, selectLocationSQL, name)
}

// EnsureEventType looks up or creates an event type by name.
func (s *Store) EnsureEventType(ctx context.Context, name string) (int64, error) {
	return s.ensure(ctx, "event type", insertEventTypeSQL, selectEventTypeSQL, name)
}

// EnsureContact looks up or creates a contact by its (name, phone, email)
// triple.
func (s *Store) EnsureContact(ctx context.Context, name, phone, email string) (int64, error) {
	return s.ensure(ctx, "contact", insertContactSQL, selectContactSQL, name, phone, email)
}

// EnsureCategory looks up or creates a category by name.
func (s *Store) EnsureCategory(ctx context.Context, name string) (int64, error) {
	return s.ensure(ctx, "category", insertCategorySQL, selectCategorySQL, name)
}

// LinkEventCategory inserts one event/category association. Repeated links
// are silent no-ops.
func (s *Store) LinkEventCategory(ctx context.Context, eventID, categoryID int64) error {
	if _, err := s.db.Exec(ctx, linkEventCategorySQL, eventID, categoryID); err != nil {
		return fmt.Errorf("linking event %d to category %d: %w", eventID, categoryID, err)
	}
	return nil
}

// RecordEventUID records that the external event UID has been ingested.
func (s *Store) RecordEventUID(ctx context.Context, eventID int64, uid string) error {
	if _, err := s.db.Exec(ctx, recordEventUIDSQL, eventID, uid); err != nil {
		return fmt.Errorf("recording event uid %s: %w", uid, err)
	}
	return nil
}

// EventSeen reports whether the external event UID has been ingested by a
// previous run.
func (s *Store) EventSeen(ctx context.Context, uid string) (bool, error) {
	var seen bool
	if err := s.db.QueryRow(ctx, eventSeenSQL, uid).Scan(&seen); err != nil {
		return false, fmt.Errorf("checking event uid %s: %w", uid, err)
	}
	return seen, nil
}

// CalendarURLs returns the feed URLs registered in the calendar_urls table,
// in table order.
func (s *Store) CalendarURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, calendarURLsSQL)
	if err != nil {
		return nil, fmt.Errorf("loading calendar urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scanning calendar url: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading calendar urls: %w", err)
	}
	return urls, nil
}
