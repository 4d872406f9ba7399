package httpserver

import (
	"net/http"
	"strconv"
	"testing"
)

func BenchmarkHandleListMovies(b *testing.B) {
	srv := buildTestServer(b)
	for i := 1; i <= 50; i++ {
		createMovie(b, srv, `{"tmdbID": `+strconv.Itoa(i)+`, "rating": {"total": 500}}`)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := do(b, srv, http.MethodGet, "/movie?rating_total_min=100&title=movie&sort=-tmdbID&limit=10", "")
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkHandleGetMovie(b *testing.B) {
	srv := buildTestServer(b)
	created := createMovie(b, srv, `{"tmdbID": 603, "rating": {"total": 350, "ch": 300, "rt": 400}}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := do(b, srv, http.MethodGet, "/movie/"+created.ID, "")
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
