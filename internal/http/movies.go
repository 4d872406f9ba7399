package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielog/internal/domain"
	"github.com/Clark-Hu/movielog/internal/failure"
)

const maxRequestBody = 1 << 20 // 1 MiB

type ratingResponse struct {
	Total int  `json:"total"`
	Ch    *int `json:"ch,omitempty"`
	Rt    *int `json:"rt,omitempty"`
}

type titleResponse struct {
	Original string  `json:"original"`
	German   *string `json:"german,omitempty"`
}

type movieResponse struct {
	ID          string         `json:"_id"`
	TmdbID      int            `json:"tmdbID"`
	Rating      ratingResponse `json:"rating"`
	DateSeen    *time.Time     `json:"dateSeen,omitempty"`
	Fsk         *int           `json:"fsk,omitempty"`
	Mm          *bool          `json:"mm,omitempty"`
	Title       titleResponse  `json:"title"`
	Genres      []string       `json:"genres"`
	ReleaseDate *time.Time     `json:"releaseDate,omitempty"`
	Runtime     *int           `json:"runtime,omitempty"`
	PosterURL   *string        `json:"posterURL,omitempty"`
	Budget      *int64         `json:"budget,omitempty"`
	Revenue     *int64         `json:"revenue,omitempty"`
	Tagline     *string        `json:"tagline,omitempty"`
	Overview    *string        `json:"overview,omitempty"`
}

type deleteResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.movies.List(r.Context(), r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	items := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, toMovieResponse(movie))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.movies.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	body, err := decodeJSONBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	movie, err := s.movies.Create(r.Context(), body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/movie/"+movie.ID)
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	body, err := decodeJSONBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	movie, err := s.movies.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	n, err := s.movies.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, deleteResponse{DeletedCount: n})
}

// decodeJSONBody reads a JSON object with numbers kept as json.Number so the
// validator can tell integers from strings. An empty body is an empty object.
func decodeJSONBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	body := map[string]any{}
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, failure.Validation(failure.Violation{Field: "body", Kind: failure.ViolationJSON})
	}
	if body == nil {
		return map[string]any{}, nil
	}
	return body, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error("encode response", zap.Error(err))
		}
	}
}

// respondError is the single place errors become responses.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	resp := failure.Normalize(err)
	if resp.Unclassified {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	s.respondJSON(w, resp.Status, resp)
}

func toMovieResponse(movie domain.Movie) movieResponse {
	genres := movie.Genres
	if genres == nil {
		genres = []string{}
	}
	return movieResponse{
		ID:     movie.ID,
		TmdbID: movie.TmdbID,
		Rating: ratingResponse{
			Total: movie.Rating.Total,
			Ch:    movie.Rating.Ch,
			Rt:    movie.Rating.Rt,
		},
		DateSeen: movie.DateSeen,
		Fsk:      movie.Fsk,
		Mm:       movie.Mm,
		Title: titleResponse{
			Original: movie.Title.Original,
			German:   movie.Title.German,
		},
		Genres:      genres,
		ReleaseDate: movie.ReleaseDate,
		Runtime:     movie.Runtime,
		PosterURL:   movie.PosterURL,
		Budget:      movie.Budget,
		Revenue:     movie.Revenue,
		Tagline:     movie.Tagline,
		Overview:    movie.Overview,
	}
}
