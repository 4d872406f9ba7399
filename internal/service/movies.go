// Package service runs the movie operations: validate, translate, call
// storage and the metadata collaborator.
package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielog/internal/domain"
	"github.com/Clark-Hu/movielog/internal/failure"
	"github.com/Clark-Hu/movielog/internal/query"
	"github.com/Clark-Hu/movielog/internal/repository"
	"github.com/Clark-Hu/movielog/internal/tmdb"
	"github.com/Clark-Hu/movielog/internal/validation"
)

// Movies is the record service.
type Movies struct {
	store    repository.MovieStore
	metadata tmdb.Client
	logger   *zap.Logger
}

// NewMovies wires the service to its collaborators.
func NewMovies(store repository.MovieStore, metadata tmdb.Client, logger *zap.Logger) *Movies {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Movies{store: store, metadata: metadata, logger: logger.Named("service")}
}

// List returns the records matching the raw query parameters.
func (s *Movies) List(ctx context.Context, params url.Values) ([]domain.Movie, error) {
	if err := validation.Validate(validation.ListRules, validation.Input{Query: params}); err != nil {
		return nil, err
	}
	filter, opts, err := query.Translate(params)
	if err != nil {
		return nil, err
	}
	return s.store.Find(ctx, filter, opts)
}

// Get returns one record.
func (s *Movies) Get(ctx context.Context, id string) (domain.Movie, error) {
	if err := validation.Validate(validation.GetRules, idInput(id, nil)); err != nil {
		return domain.Movie{}, err
	}
	movie, err := s.store.FindByID(ctx, canonicalID(id))
	return movie, notFound(err)
}

// intInput decodes a JSON integer or a decimal string holding one.
type intInput int

func (n *intInput) UnmarshalJSON(data []byte) error {
	v, err := strconv.Atoi(strings.Trim(string(data), `"`))
	if err != nil {
		return errors.Wrapf(err, "integer %s", data)
	}
	*n = intInput(v)
	return nil
}

func (n *intInput) ptr() *int {
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}

type ratingInput struct {
	Total *intInput `json:"total"`
	Ch    *intInput `json:"ch"`
	Rt    *intInput `json:"rt"`
}

func (r *ratingInput) rating() domain.Rating {
	return domain.Rating{Total: *r.Total.ptr(), Ch: r.Ch.ptr(), Rt: r.Rt.ptr()}
}

// movieInput is the caller-owned part of a record as sent in a request body.
type movieInput struct {
	TmdbID   *intInput    `json:"tmdbID"`
	Rating   *ratingInput `json:"rating"`
	DateSeen *string      `json:"dateSeen"`
	Fsk      *intInput    `json:"fsk"`
	Mm       *bool        `json:"mm"`
}

// decodeInput re-reads a validated body into typed fields.
func decodeInput(body map[string]any) (movieInput, *time.Time, error) {
	var in movieInput
	payload, err := json.Marshal(body)
	if err != nil {
		return in, nil, errors.Wrap(err, "encode body")
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return in, nil, errors.Wrap(err, "decode body")
	}
	if in.DateSeen == nil {
		return in, nil, nil
	}
	seen, err := domain.ParseDate(*in.DateSeen)
	if err != nil {
		return in, nil, err
	}
	return in, &seen, nil
}

// Create fetches TMDB metadata for the body's tmdbID, merges it with the
// caller fields and inserts the record.
func (s *Movies) Create(ctx context.Context, body map[string]any) (domain.Movie, error) {
	if err := validation.Validate(validation.CreateRules, validation.Input{Body: body}); err != nil {
		return domain.Movie{}, err
	}
	in, seen, err := decodeInput(body)
	if err != nil {
		return domain.Movie{}, err
	}

	tmdbID := int(*in.TmdbID)
	md, err := s.metadata.FetchByID(ctx, tmdbID)
	if err != nil {
		s.logger.Error("tmdb lookup failed", zap.Int("tmdbID", tmdbID), zap.Error(err))
		return domain.Movie{}, errors.Wrapf(err, "fetch metadata for %d", tmdbID)
	}

	movie := domain.Movie{
		TmdbID:   tmdbID,
		Rating:   in.Rating.rating(),
		DateSeen: seen,
		Fsk:      in.Fsk.ptr(),
		Mm:       in.Mm,
	}
	movie.ApplyMetadata(*md)

	stored, err := s.store.Insert(ctx, movie)
	if err != nil {
		return domain.Movie{}, err
	}
	s.logger.Info("movie created", zap.String("id", stored.ID), zap.Int("tmdbID", stored.TmdbID))
	return stored, nil
}

// Update applies a partial update. Metadata is not re-fetched and the
// ch/rt/total relationship is not re-checked.
func (s *Movies) Update(ctx context.Context, id string, body map[string]any) (domain.Movie, error) {
	if err := validation.Validate(validation.UpdateRules, idInput(id, body)); err != nil {
		return domain.Movie{}, err
	}
	in, seen, err := decodeInput(body)
	if err != nil {
		return domain.Movie{}, err
	}

	patch := domain.MoviePatch{TmdbID: in.TmdbID.ptr(), DateSeen: seen, Fsk: in.Fsk.ptr(), Mm: in.Mm}
	if in.Rating != nil {
		rating := in.Rating.rating()
		patch.Rating = &rating
	}

	movie, err := s.store.UpdateByID(ctx, canonicalID(id), patch)
	return movie, notFound(err)
}

// Delete removes a record and returns the deleted count.
func (s *Movies) Delete(ctx context.Context, id string) (int64, error) {
	if err := validation.Validate(validation.DeleteRules, idInput(id, nil)); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteByID(ctx, canonicalID(id))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, failure.NotFound()
	}
	return n, nil
}

// Ping reports whether storage is reachable.
func (s *Movies) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func idInput(id string, body map[string]any) validation.Input {
	return validation.Input{Path: map[string]string{"id": id}, Body: body}
}

// canonicalID lowercases a validated hex id; both backends store ids in
// lowercase.
func canonicalID(id string) string {
	return strings.ToLower(id)
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return failure.NotFound()
	}
	return err
}
