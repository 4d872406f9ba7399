// Package repository persists movie records. Two backends implement
// MovieStore: MongoDB, the document store the filter model was designed
// for, and Postgres.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/Clark-Hu/movielog/internal/domain"
	"github.com/Clark-Hu/movielog/internal/failure"
	"github.com/Clark-Hu/movielog/internal/query"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// MovieStore is the storage collaborator used by the service layer.
type MovieStore interface {
	Find(ctx context.Context, filter query.Filter, opts query.Options) ([]domain.Movie, error)
	FindByID(ctx context.Context, id string) (domain.Movie, error)
	// Insert enforces the record schema and tmdbID uniqueness.
	Insert(ctx context.Context, movie domain.Movie) (domain.Movie, error)
	UpdateByID(ctx context.Context, id string, patch domain.MoviePatch) (domain.Movie, error)
	// DeleteByID returns the number of deleted records.
	DeleteByID(ctx context.Context, id string) (int64, error)
	Ping(ctx context.Context) error
}

// ConstraintError reports a record rejected by the storage schema or a
// unique index.
type ConstraintError struct {
	Violations []failure.Violation
	cause      error
}

func newConstraintError(cause error, violations ...failure.Violation) *ConstraintError {
	return &ConstraintError{Violations: violations, cause: cause}
}

func (e *ConstraintError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s (%s)", v.Field, v.Kind))
	}
	msg := "repository: constraint violation: " + strings.Join(parts, ", ")
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// ConstraintViolations lets the error normalizer re-map storage failures.
func (e *ConstraintError) ConstraintViolations() []failure.Violation {
	return e.Violations
}

func (e *ConstraintError) Unwrap() error { return e.cause }

func duplicateTmdbID(cause error) *ConstraintError {
	return newConstraintError(cause, failure.Violation{Field: query.PathTmdbID, Kind: failure.ViolationUnique})
}
