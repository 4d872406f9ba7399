package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielog/internal/logging"
)

// sampleMovies is served when no data file is given.
const sampleMovies = `{
  "603": {"id": 603, "original_title": "The Matrix", "title": "Matrix", "release_date": "1999-03-30",
          "genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}],
          "runtime": 136, "poster_path": "/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg",
          "budget": 63000000, "revenue": 463517383, "tagline": "Willkommen in der realen Welt.", "overview": ""},
  "27205": {"id": 27205, "original_title": "Inception", "title": "Inception", "release_date": "2010-07-15",
            "genres": [{"id": 28, "name": "Action"}], "runtime": 148, "poster_path": null,
            "budget": 160000000, "revenue": 839030630, "tagline": null, "overview": null}
}`

func main() {
	var (
		port  = flag.String("port", "9099", "port to listen on")
		data  = flag.String("data", "", "path to a JSON object of TMDB movie details keyed by id")
		token = flag.String("token", "", "bearer token to require, empty accepts any")
		debug = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	logger, err := logging.New("development", level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	payload := []byte(sampleMovies)
	if *data != "" {
		if payload, err = os.ReadFile(*data); err != nil {
			logger.Fatal("read mock data", zap.Error(err))
		}
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(payload, &entries); err != nil {
		logger.Fatal("parse mock data", zap.Error(err))
	}

	addr := ":" + *port
	logger.Info("mock tmdb listening", zap.String("addr", addr), zap.Int("entries", len(entries)))
	if err := http.ListenAndServe(addr, newHandler(entries, *token, logger)); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newHandler(entries map[string]json.RawMessage, token string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/3/movie/{id}", func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeStatus(w, http.StatusUnauthorized, "Invalid API key: You must be granted a valid key.")
			return
		}
		id := chi.URLParam(r, "id")
		entry, ok := entries[id]
		logger.Debug("lookup", zap.String("id", id), zap.String("language", r.URL.Query().Get("language")), zap.Bool("found", ok))
		if !ok {
			writeStatus(w, http.StatusNotFound, "The resource you requested could not be found.")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(entry)
	})
	return r
}

// writeStatus mimics the TMDB error body.
func writeStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":        false,
		"status_message": message,
	})
}
