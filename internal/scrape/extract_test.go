package scrape

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"calscrape/internal/ics"
	"calscrape/internal/model"
)

func entryFromLines(t *testing.T, lines ...string) ics.Entry {
	t.Helper()
	doc := append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Test//Test//EN",
		"BEGIN:VEVENT",
	}, lines...)
	doc = append(doc, "END:VEVENT", "END:VCALENDAR", "")

	entries, err := ics.Parse([]byte(strings.Join(doc, "\r\n")))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("fixture produced %d entries, want 1", len(entries))
	}
	return entries[0]
}

func TestExtractRecordFullEvent(t *testing.T) {
	entry := entryFromLines(t,
		"UID:concert-42@trumba.com",
		"SUMMARY:Spring Faculty Concert",
		"DESCRIPTION:An evening of chamber music.",
		"LOCATION:Green Music Center",
		"DTSTART:20260405T190000Z",
		"DTEND:20260405T210000Z",
		"CATEGORIES:Music",
		"X-MICROSOFT-ALLDAYEVENT:FALSE",
		`X-TRUMBA-CUSTOMFIELD;NAME="Event Type";ID=12;TYPE=number:Concert`,
		`X-TRUMBA-CUSTOMFIELD;NAME="Web Site";ID=3109;TYPE=URL:https://music.example.edu/concert`,
		`X-TRUMBA-CUSTOMFIELD;NAME="Student Fee";ID=3111;TYPE=SingleLine:$5`,
		`X-TRUMBA-CUSTOMFIELD;NAME="General Fee";ID=3124;TYPE=SingleLine:$12`,
		`X-TRUMBA-CUSTOMFIELD;NAME="Categories";ID=3138;TYPE=SingleLine:Music, Arts and Entertainment`,
		`X-TRUMBA-CUSTOMFIELD;NAME="Open to Public";ID=12515;TYPE=Boolean:TRUE`,
		`X-TRUMBA-CUSTOMFIELD;NAME="Ticket Sales";ID=13402;TYPE=URL:https://tickets.example.edu/42`,
		`X-TRUMBA-CUSTOMFIELD;NAME="Contact Name";ID=13404;TYPE=SingleLine:Jordan Lee`,
		`X-TRUMBA-CUSTOMFIELD;NAME="Contact Phone";ID=13405;TYPE=SingleLine:707-555-0199`,
		`X-TRUMBA-CUSTOMFIELD;NAME="Contact Email";ID=13406;TYPE=SingleLine:events@example.edu`,
	)

	rec, err := ExtractRecord(entry)
	if err != nil {
		t.Fatalf("ExtractRecord() error: %v", err)
	}

	if got := rec.EventUID; got != model.String("concert-42@trumba.com") {
		t.Errorf("EventUID = %+v", got)
	}
	if got := rec.Summary; got != model.String("Spring Faculty Concert") {
		t.Errorf("Summary = %+v", got)
	}
	if got := rec.Location; got != model.String("Green Music Center") {
		t.Errorf("Location = %+v", got)
	}
	if got := rec.EventType; got != model.String("Concert") {
		t.Errorf("EventType = %+v", got)
	}
	if got := rec.WebsiteURL; got != model.String("https://music.example.edu/concert") {
		t.Errorf("WebsiteURL = %+v", got)
	}
	if got := rec.StudentAdmissionFee; got != model.String("$5") {
		t.Errorf("StudentAdmissionFee = %+v", got)
	}
	if got := rec.GeneralAdmissionFee; got != model.String("$12") {
		t.Errorf("GeneralAdmissionFee = %+v", got)
	}
	if got := rec.TicketSalesURL; got != model.String("https://tickets.example.edu/42") {
		t.Errorf("TicketSalesURL = %+v", got)
	}
	if rec.AllDayEvent != model.BoolFalse {
		t.Errorf("AllDayEvent = %v, want BoolFalse", rec.AllDayEvent)
	}
	if rec.OpenToPublic != model.BoolTrue {
		t.Errorf("OpenToPublic = %v, want BoolTrue", rec.OpenToPublic)
	}
	if !rec.Start.Valid || !rec.End.Valid {
		t.Errorf("Start/End = %+v/%+v, want both present", rec.Start, rec.End)
	}
	if !rec.HasContactInfo() {
		t.Error("HasContactInfo() = false with all contact fields set")
	}

	wantCategories := []string{"Arts and Entertainment", "Music"}
	if !reflect.DeepEqual(rec.Categories, wantCategories) {
		t.Errorf("Categories = %v, want %v", rec.Categories, wantCategories)
	}
}

func TestExtractRecordSparseEvent(t *testing.T) {
	entry := entryFromLines(t,
		"UID:mystery@trumba.com",
		"SUMMARY:Untitled",
	)

	rec, err := ExtractRecord(entry)
	if err != nil {
		t.Fatalf("ExtractRecord() error: %v", err)
	}

	if rec.Location.Valid {
		t.Errorf("Location = %+v, want no value", rec.Location)
	}
	if rec.HasLocation() {
		t.Error("HasLocation() = true with no LOCATION")
	}
	if rec.Start.Valid || rec.End.Valid {
		t.Errorf("Start/End = %+v/%+v, want both absent", rec.Start, rec.End)
	}
	if rec.AllDayEvent != model.BoolUnset {
		t.Errorf("AllDayEvent = %v, want BoolUnset (use storage default)", rec.AllDayEvent)
	}
	if rec.OpenToPublic != model.BoolUnset {
		t.Errorf("OpenToPublic = %v, want BoolUnset", rec.OpenToPublic)
	}
	if len(rec.Categories) != 0 {
		t.Errorf("Categories = %v, want empty", rec.Categories)
	}

	// Contact fields coalesce to a present empty string, but the record
	// still counts as having no contact info.
	for _, f := range []model.Field{rec.ContactName, rec.ContactPhone, rec.ContactEmail} {
		if !f.Valid || f.Value != "" {
			t.Errorf("contact field = %+v, want present empty string", f)
		}
	}
	if rec.HasContactInfo() {
		t.Error("HasContactInfo() = true with all contact fields empty")
	}
}

func TestExtractRecordCategoryMerge(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name: "dedup across plain and custom sources",
			lines: []string{
				"UID:a@trumba.com",
				"CATEGORIES:Music",
				`X-TRUMBA-CUSTOMFIELD;NAME="Categories";ID=3138;TYPE=SingleLine:Music, Art`,
			},
			want: []string{"Art", "Music"},
		},
		{
			name: "plain field only",
			lines: []string{
				"UID:b@trumba.com",
				"CATEGORIES:Music",
			},
			want: []string{"Music"},
		},
		{
			name: "custom field only",
			lines: []string{
				"UID:c@trumba.com",
				`X-TRUMBA-CUSTOMFIELD;NAME="Categories";ID=3138;TYPE=SingleLine:Lectures, Films`,
			},
			want: []string{"Films", "Lectures"},
		},
		{
			name:  "no sources",
			lines: []string{"UID:d@trumba.com"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ExtractRecord(entryFromLines(t, tt.lines...))
			if err != nil {
				t.Fatalf("ExtractRecord() error: %v", err)
			}
			if !reflect.DeepEqual(rec.Categories, tt.want) {
				t.Errorf("Categories = %v, want %v", rec.Categories, tt.want)
			}
		})
	}
}

func TestExtractRecordBooleanCoding(t *testing.T) {
	entry := entryFromLines(t,
		"UID:maybe@trumba.com",
		`X-TRUMBA-CUSTOMFIELD;NAME="Open to Public";ID=12515;TYPE=Boolean:MAYBE`,
	)

	rec, err := ExtractRecord(entry)
	if err != nil {
		t.Fatalf("ExtractRecord() error: %v", err)
	}
	if rec.OpenToPublic != model.BoolUnset {
		t.Errorf("OpenToPublic = %v for value MAYBE, want BoolUnset (absent, not false)", rec.OpenToPublic)
	}
}

func TestExtractRecordMalformedCustomField(t *testing.T) {
	entry := entryFromLines(t,
		"UID:bad@trumba.com",
		`X-TRUMBA-CUSTOMFIELD;NAME="Broken";ID=banana;TYPE=number:Oops`,
	)

	_, err := ExtractRecord(entry)
	if err == nil {
		t.Fatal("ExtractRecord() with a malformed custom-field ID: got nil error")
	}
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("ExtractRecord() error = %T, want *ExtractionError", err)
	}
	if extractionErr.UID != "bad@trumba.com" {
		t.Errorf("ExtractionError.UID = %q, want the event UID", extractionErr.UID)
	}
}
