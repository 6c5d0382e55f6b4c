package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appLog "calscrape/internal/log"
)

// ErrFetch marks HTTP-level feed failures (transport error or non-success
// status). The driver treats a feed that fails this way as empty.
var ErrFetch = errors.New("feed fetch failed")

const fetchTimeout = 30 * time.Second

// Fetcher retrieves raw iCalendar documents over HTTP. One attempt per feed
// per run; retries are left to the scheduler that re-invokes the pipeline.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with a default client timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// Fetch performs a single GET of the given feed URL and returns the response
// body. Any transport error or non-2xx status is reported as ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty feed URL", ErrFetch)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	appLog.Debug("feed fetch start", "url", url)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}

	appLog.Debug("feed fetch success", "url", url, "bytes", len(body))
	return body, nil
}
