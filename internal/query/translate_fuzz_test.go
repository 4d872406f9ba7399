package query

import (
	"net/url"
	"testing"
)

func FuzzTranslate(f *testing.F) {
	seeds := []string{
		"rating_total_min=100&rating_total_max=900",
		"title=(.*&genre=Drama",
		"limit=10&page=2&sort=-runtime",
		"fsk=&mm=",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		filter, _, err := Translate(values)
		if err != nil {
			return
		}
		for path := range filter.Fields {
			if path == PathTitle {
				t.Fatalf("text path leaked into field predicates")
			}
			found := false
			for _, field := range Fields {
				if field.Path == path {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("unmapped path %q in filter", path)
			}
		}
		if filter.Text != nil && filter.Text.Term == "" {
			t.Fatalf("empty text term must be dropped")
		}
	})
}
