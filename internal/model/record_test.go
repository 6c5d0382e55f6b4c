package model

import (
	"reflect"
	"testing"
)

func TestParseBool(t *testing.T) {
	tests := []struct {
		name string
		in   Field
		want Bool
	}{
		{name: "true", in: String("TRUE"), want: BoolTrue},
		{name: "false", in: String("FALSE"), want: BoolFalse},
		{name: "unrecognized", in: String("MAYBE"), want: BoolUnset},
		{name: "lowercase is unrecognized", in: String("true"), want: BoolUnset},
		{name: "empty string", in: String(""), want: BoolUnset},
		{name: "absent", in: None(), want: BoolUnset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseBool(tt.in); got != tt.want {
				t.Errorf("ParseBool(%+v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMergeCategories(t *testing.T) {
	tests := []struct {
		name    string
		sources [][]string
		want    []string
	}{
		{
			name:    "dedup across sources",
			sources: [][]string{{"Music"}, {"Music", "Art"}},
			want:    []string{"Art", "Music"},
		},
		{
			name:    "case sensitive",
			sources: [][]string{{"music"}, {"Music"}},
			want:    []string{"Music", "music"},
		},
		{
			name:    "empty sources contribute nothing",
			sources: [][]string{nil, {}, {""}},
			want:    []string{},
		},
		{
			name:    "single source",
			sources: [][]string{{"Athletics"}},
			want:    []string{"Athletics"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeCategories(tt.sources...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeCategories(%v) = %v, want %v", tt.sources, got, tt.want)
			}
		})
	}
}

func TestHasContactInfo(t *testing.T) {
	tests := []struct {
		name                string
		cname, phone, email string
		want                bool
	}{
		{name: "all empty after coalescing", want: false},
		{name: "name only", cname: "Jordan Lee", want: true},
		{name: "phone only", phone: "707-555-0199", want: true},
		{name: "email only", email: "events@example.edu", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Record{
				ContactName:  String(tt.cname),
				ContactPhone: String(tt.phone),
				ContactEmail: String(tt.email),
			}
			if got := rec.HasContactInfo(); got != tt.want {
				t.Errorf("HasContactInfo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasLocation(t *testing.T) {
	withLocation := &Record{Location: String("Green Music Center")}
	if !withLocation.HasLocation() {
		t.Error("HasLocation() = false for a present location")
	}

	withoutLocation := &Record{Location: None()}
	if withoutLocation.HasLocation() {
		t.Error("HasLocation() = true for an absent location")
	}
}
