package store

import (
	"context"

	"calscrape/internal/model"
)

// PopulateRecord runs the dependency-ordered upsert sequence for one record.
// Dimension rows are always resolved before the event row references them:
//
//  1. location (only when the record has one)
//  2. event type (every record carries one)
//  3. contact (only when any contact field is non-empty)
//  4. each category
//  5. events upsert, returning the event's surrogate id
//  6. event/category links by that id
//  7. external-UID bookkeeping
//
// Any failure aborts the remaining steps for this record. Dimension inserts
// already performed are not rolled back; repeating the sequence is safe
// because every statement is conflict-tolerant.
func (s *Store) PopulateRecord(ctx context.Context, rec *model.Record) error {
	var locationID *int64
	if rec.HasLocation() {
		id, err := s.EnsureLocation(ctx, rec.Location.Value)
		if err != nil {
			return err
		}
		locationID = &id
	}

	eventTypeID, err := s.EnsureEventType(ctx, rec.EventType.Value)
	if err != nil {
		return err
	}

	var contactID *int64
	if rec.HasContactInfo() {
		id, err := s.EnsureContact(ctx, rec.ContactName.Value, rec.ContactPhone.Value, rec.ContactEmail.Value)
		if err != nil {
			return err
		}
		contactID = &id
	}

	categoryIDs := make([]int64, 0, len(rec.Categories))
	for _, name := range rec.Categories {
		id, err := s.EnsureCategory(ctx, name)
		if err != nil {
			return err
		}
		categoryIDs = append(categoryIDs, id)
	}

	eventID, err := s.UpsertEvent(ctx, rec, locationID, eventTypeID, contactID)
	if err != nil {
		return err
	}

	for _, categoryID := range categoryIDs {
		if err := s.LinkEventCategory(ctx, eventID, categoryID); err != nil {
			return err
		}
	}

	return s.RecordEventUID(ctx, eventID, rec.EventUID.Value)
}
