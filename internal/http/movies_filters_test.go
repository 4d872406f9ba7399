package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Clark-Hu/movielog/internal/failure"
)

func TestHandleListMovies(t *testing.T) {
	srv := buildTestServer(t)
	createMovie(t, srv, `{"tmdbID": 1, "rating": {"total": 200}, "fsk": 6}`)
	createMovie(t, srv, `{"tmdbID": 2, "rating": {"total": 500}, "fsk": 12}`)
	createMovie(t, srv, `{"tmdbID": 3, "rating": {"total": 800}, "fsk": 12}`)

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"all", "", []int{1, 2, 3}},
		{"range", "rating_total_min=300&rating_total_max=900", []int{2, 3}},
		{"one sided", "rating_total_max=500", []int{1, 2}},
		{"title any case", "title=MOVIE%202", []int{2}},
		{"german title", "title=film%203", []int{3}},
		{"exact", "fsk=12", []int{2, 3}},
		{"sorted desc", "sort=-rating.total", []int{3, 2, 1}},
		{"paged", "limit=2&page=1", []int{3}},
		{"unknown ignored", "foo=bar", []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, "/movie?"+tt.query, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			var items []movieResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
				t.Fatalf("decode: %v", err)
			}
			got := make([]int, 0, len(items))
			for _, item := range items {
				got = append(got, item.TmdbID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("tmdbIDs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandleListMovies_InvalidQuery(t *testing.T) {
	srv := buildTestServer(t)
	rec := do(t, srv, http.MethodGet, "/movie?rating_total_min=abc&fsk=7", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	want := []failure.Violation{
		{Field: "rating_total_min", Kind: failure.ViolationInteger},
		{Field: "fsk", Kind: failure.ViolationOneOf},
	}
	if diff := cmp.Diff(want, decodeError(t, rec).Details); diff != "" {
		t.Fatalf("details mismatch (-want +got):\n%s", diff)
	}
}
