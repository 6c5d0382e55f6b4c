package ics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed.ics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		fmt.Fprint(w, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	})
	mux.HandleFunc("/gone.ics", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	})
	mux.HandleFunc("/down.ics", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewFetcher()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "success", url: srv.URL + "/feed.ics"},
		{name: "not found", url: srv.URL + "/gone.ics", wantErr: true},
		{name: "server error", url: srv.URL + "/down.ics", wantErr: true},
		{name: "empty url", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := f.Fetch(context.Background(), tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrFetch) {
					t.Fatalf("Fetch() error = %v, want ErrFetch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error: %v", err)
			}
			if len(body) == 0 {
				t.Error("Fetch() returned an empty body")
			}
		})
	}
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := NewFetcher()
	if _, err := f.Fetch(context.Background(), url); !errors.Is(err, ErrFetch) {
		t.Fatalf("Fetch() against a closed server: error = %v, want ErrFetch", err)
	}
}
