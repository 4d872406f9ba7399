package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Clark-Hu/movielog/internal/failure"
)

func FuzzDecodeJSONBody(f *testing.F) {
	seeds := []string{
		`{"tmdbID": 603, "rating": {"total": 350, "ch": 300, "rt": 400}}`,
		`{"rating": null}`,
		`[]`,
		`"text"`,
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		req := httptest.NewRequest(http.MethodPost, "/movie", bytes.NewBufferString(raw))
		body, err := decodeJSONBody(httptest.NewRecorder(), req)
		if err != nil {
			if failure.Normalize(err).Status != http.StatusBadRequest {
				t.Fatalf("decode error must be a 400: %v", err)
			}
			return
		}
		if body == nil {
			t.Fatalf("nil body without error for %q", raw)
		}
	})
}
