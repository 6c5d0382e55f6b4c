package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"calscrape/internal/ics"
	appLog "calscrape/internal/log"
	"calscrape/internal/model"
	"calscrape/internal/store"
)

// Fetcher retrieves one raw feed document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Storage is the slice of the store the driver needs.
type Storage interface {
	CalendarURLs(ctx context.Context) ([]string, error)
	EventSeen(ctx context.Context, uid string) (bool, error)
	PopulateRecord(ctx context.Context, rec *model.Record) error
}

// Stats summarizes one pipeline run.
type Stats struct {
	Feeds        int
	FeedsSkipped int

	Events          int
	EventsSkipped   int
	EventsNew       int
	EventsRefreshed int
}

// Runner sequences fetch, parse, extract and upsert across all configured
// feeds. A single feed or event failing never aborts the run; only an
// unusable storage connection does.
type Runner struct {
	Fetcher Fetcher
	Store   Storage

	// Feeds is the ordered feed URL list. When empty, the calendar_urls
	// table supplies it.
	Feeds []string

	// Progress receives one dot per processed event and a final "ok".
	// Defaults to stdout.
	Progress io.Writer
}

// Run executes the full pipeline once. The returned stats cover everything
// up to the point of return, even on error.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	progress := r.Progress
	if progress == nil {
		progress = os.Stdout
	}

	feeds := r.Feeds
	if len(feeds) == 0 {
		var err error
		feeds, err = r.Store.CalendarURLs(ctx)
		if err != nil {
			return stats, err
		}
	}

	for _, url := range feeds {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Feeds++

		entries, err := r.loadFeed(ctx, url)
		if err != nil {
			// Fetch and parse failures degrade the feed to empty.
			appLog.Error("skipping feed", err, "url", url)
			stats.FeedsSkipped++
			continue
		}

		for _, entry := range entries {
			processed, err := r.processEntry(ctx, entry, &stats)
			if err != nil {
				return stats, fmt.Errorf("feed %s: %w", url, err)
			}
			if processed {
				fmt.Fprint(progress, ".")
			}
		}
	}

	fmt.Fprintln(progress, "\nok")
	appLog.Info("scrape completed",
		"feeds", stats.Feeds,
		"feeds_skipped", stats.FeedsSkipped,
		"events", stats.Events,
		"events_skipped", stats.EventsSkipped,
		"events_new", stats.EventsNew,
		"events_refreshed", stats.EventsRefreshed,
	)
	return stats, nil
}

func (r *Runner) loadFeed(ctx context.Context, url string) ([]ics.Entry, error) {
	body, err := r.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return ics.Parse(body)
}

// processEntry extracts and upserts one event, reporting whether it was
// successfully stored. Malformed events, UID-less events and dimension-lookup
// inconsistencies are counted and skipped; any other storage error is
// returned and aborts the run.
func (r *Runner) processEntry(ctx context.Context, entry ics.Entry, stats *Stats) (bool, error) {
	rec, err := ExtractRecord(entry)
	if err != nil {
		appLog.Error("skipping event", err)
		stats.EventsSkipped++
		return false, nil
	}

	// The upsert is keyed by event_uid, so an event without one can never
	// be stored. Skip it before touching the store.
	if !rec.EventUID.Valid {
		appLog.Error("skipping event", errors.New("missing UID"), "summary", rec.Summary.Value)
		stats.EventsSkipped++
		return false, nil
	}

	// The seen-check only classifies the event for reporting. The upsert
	// runs either way so that re-scraping refreshes existing rows.
	seen, err := r.Store.EventSeen(ctx, rec.EventUID.Value)
	if err != nil {
		return false, err
	}

	if err := r.Store.PopulateRecord(ctx, rec); err != nil {
		if errors.Is(err, store.ErrLookupInconsistency) {
			appLog.Error("skipping event", err, "uid", rec.EventUID.Value)
			stats.EventsSkipped++
			return false, nil
		}
		return false, err
	}

	stats.Events++
	if seen {
		stats.EventsRefreshed++
	} else {
		stats.EventsNew++
	}
	return true, nil
}
