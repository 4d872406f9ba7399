package query

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func str(s string) *string { return &s }

func i64(n int64) *int64 { return &n }

func mustTranslate(t *testing.T, raw string) (Filter, Options) {
	t.Helper()
	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("parse query %q: %v", raw, err)
	}
	filter, opts, err := Translate(values)
	if err != nil {
		t.Fatalf("Translate(%q) unexpected error: %v", raw, err)
	}
	return filter, opts
}

func TestTranslateRanges(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]Predicate
	}{
		{
			name: "two-sided rating range",
			raw:  "rating_total_min=200&rating_total_max=800",
			want: map[string]Predicate{PathRatingTotal: {Gte: str("200"), Lte: str("800")}},
		},
		{
			name: "order does not matter",
			raw:  "rating_total_max=800&rating_total_min=200",
			want: map[string]Predicate{PathRatingTotal: {Gte: str("200"), Lte: str("800")}},
		},
		{
			name: "min only",
			raw:  "rating_ch_min=300",
			want: map[string]Predicate{PathRatingCh: {Gte: str("300")}},
		},
		{
			name: "max only",
			raw:  "runtime_max=120",
			want: map[string]Predicate{PathRuntime: {Lte: str("120")}},
		},
		{
			name: "date ranges on distinct paths",
			raw:  "date_seen_min=2020-01-01&date_released_max=1999-12-31",
			want: map[string]Predicate{
				PathDateSeen:    {Gte: str("2020-01-01")},
				PathReleaseDate: {Lte: str("1999-12-31")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, _ := mustTranslate(t, tt.raw)
			if diff := cmp.Diff(tt.want, filter.Fields); diff != "" {
				t.Fatalf("Fields mismatch (-want +got):\n%s", diff)
			}
			if filter.Text != nil {
				t.Fatalf("unexpected text match %+v", filter.Text)
			}
		})
	}
}

func TestTranslateExact(t *testing.T) {
	filter, _ := mustTranslate(t, "fsk=16&mm=true&genre=Drama")
	want := map[string]Predicate{
		PathFsk:    {Eq: str("16")},
		PathMm:     {Eq: str("true")},
		PathGenres: {Eq: str("Drama")},
	}
	if diff := cmp.Diff(want, filter.Fields); diff != "" {
		t.Fatalf("Fields mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateTitleSearch(t *testing.T) {
	filter, _ := mustTranslate(t, "title=Matrix")
	want := &TextMatch{Paths: []string{PathTitleOriginal, PathTitleGerman}, Term: "Matrix"}
	if diff := cmp.Diff(want, filter.Text); diff != "" {
		t.Fatalf("Text mismatch (-want +got):\n%s", diff)
	}
	if len(filter.Fields) != 0 {
		t.Fatalf("title must not produce field predicates: %+v", filter.Fields)
	}
}

func TestTranslateDropsUnknownAndEmpty(t *testing.T) {
	filter, opts := mustTranslate(t, "director=Nolan&title_original=x&fsk=&title=&rating_total_min=")
	if !filter.Empty() {
		t.Fatalf("expected empty filter, got %+v", filter)
	}
	if opts.Limit != nil || opts.Skip != nil || opts.Sort != nil {
		t.Fatalf("expected unset options, got %+v", opts)
	}
}

func TestTranslateEmptyQuery(t *testing.T) {
	filter, opts, err := Translate(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filter.Empty() {
		t.Fatalf("expected empty filter, got %+v", filter)
	}
	if diff := cmp.Diff(Options{}, opts); diff != "" {
		t.Fatalf("Options mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateReservedParamsNeverFilter(t *testing.T) {
	filter, _ := mustTranslate(t, "limit=10&page=2&sort=-rating.total")
	if !filter.Empty() {
		t.Fatalf("reserved params leaked into filter: %+v", filter)
	}
}

func TestTranslateOptions(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Options
	}{
		{"limit and page", "limit=10&page=2", Options{Skip: i64(20), Limit: i64(10)}},
		{"first page", "limit=5&page=0", Options{Skip: i64(0), Limit: i64(5)}},
		{"limit only", "limit=5", Options{Limit: i64(5)}},
		{"page without limit", "page=3", Options{}},
		{"zero limit is unlimited", "limit=0&page=4", Options{}},
		{
			"sort keys",
			"sort=-rating.total,dateSeen",
			Options{Sort: []SortKey{{Path: PathRatingTotal, Desc: true}, {Path: PathDateSeen}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, opts := mustTranslate(t, tt.raw)
			if diff := cmp.Diff(tt.want, opts); diff != "" {
				t.Fatalf("Options mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTranslateInvalidLimit(t *testing.T) {
	values, _ := url.ParseQuery("limit=abc")
	if _, _, err := Translate(values); err == nil {
		t.Fatalf("expected error for non-numeric limit")
	}
}

func TestParseSort(t *testing.T) {
	got := ParseSort("-dateSeen  runtime, +title.original unknown -dateSeen __v")
	want := []SortKey{
		{Path: PathDateSeen, Desc: true},
		{Path: PathRuntime},
		{Path: PathTitleOriginal},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseSort mismatch (-want +got):\n%s", diff)
	}
	if ParseSort("") != nil {
		t.Fatalf("empty sort should yield nil")
	}
}

func TestLookup(t *testing.T) {
	f, ok := Lookup("date_released_min")
	if !ok || f.Path != PathReleaseDate || f.Role != RoleMin {
		t.Fatalf("Lookup(date_released_min) = %+v, %v", f, ok)
	}
	if _, ok := Lookup("title_german"); ok {
		t.Fatalf("title_german must not be a recognised parameter")
	}
}

func TestFieldsTableConsistency(t *testing.T) {
	seen := map[string]bool{}
	textRoles := 0
	for _, f := range Fields {
		if seen[f.Param] {
			t.Fatalf("duplicate parameter %q", f.Param)
		}
		seen[f.Param] = true
		if f.Role == RoleText {
			textRoles++
		}
	}
	if textRoles != 1 {
		t.Fatalf("expected exactly one text role, got %d", textRoles)
	}
}
