package domain

import (
	"math"
	"time"
)

// FSKRatings lists the accepted German age ratings.
var FSKRatings = []int64{0, 6, 12, 16, 18}

// Rating captures the overall score plus the optional pair of individual scores.
type Rating struct {
	Total int
	Ch    *int
	Rt    *int
}

// HasIndividual reports whether either individual score is set.
func (r Rating) HasIndividual() bool {
	return r.Ch != nil || r.Rt != nil
}

// MeanOf returns round((a+b)/2), the total implied by two individual scores.
func MeanOf(a, b int) int {
	return int(math.Round(float64(a+b) / 2))
}

// Title holds the original title and the optional localized one.
type Title struct {
	Original string
	German   *string
}

// Metadata is the canonical movie data fetched from TMDB at creation time.
type Metadata struct {
	Title       Title
	ReleaseDate *time.Time
	Genres      []string
	Runtime     *int
	PosterURL   *string
	Budget      *int64
	Revenue     *int64
	Tagline     *string
	Overview    *string
}

// Movie represents a watched movie record.
type Movie struct {
	ID       string
	TmdbID   int
	Rating   Rating
	DateSeen *time.Time
	Fsk      *int
	Mm       *bool

	Title       Title
	Genres      []string
	ReleaseDate *time.Time
	Runtime     *int
	PosterURL   *string
	Budget      *int64
	Revenue     *int64
	Tagline     *string
	Overview    *string
}

// ApplyMetadata copies fetched metadata onto the record.
func (m *Movie) ApplyMetadata(md Metadata) {
	m.Title = md.Title
	m.Genres = md.Genres
	m.ReleaseDate = md.ReleaseDate
	m.Runtime = md.Runtime
	m.PosterURL = md.PosterURL
	m.Budget = md.Budget
	m.Revenue = md.Revenue
	m.Tagline = md.Tagline
	m.Overview = md.Overview
}

// MoviePatch lists the caller-owned fields a partial update may change.
// A non-nil Rating replaces the stored rating as a whole; sub-scores missing
// from it are cleared.
type MoviePatch struct {
	TmdbID   *int
	Rating   *Rating
	DateSeen *time.Time
	Fsk      *int
	Mm       *bool
}

// Empty reports whether the patch changes nothing.
func (p MoviePatch) Empty() bool {
	return p.TmdbID == nil && p.Rating == nil && p.DateSeen == nil && p.Fsk == nil && p.Mm == nil
}
