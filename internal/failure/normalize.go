package failure

import (
	"net/http"

	"github.com/pkg/errors"
)

// ConstraintViolator is implemented by storage errors raised by the storage
// layer's own schema or uniqueness checks.
type ConstraintViolator interface {
	error
	ConstraintViolations() []Violation
}

// Response is the normalized representation of any error reaching the boundary.
type Response struct {
	Status  int         `json:"-"`
	Details []Violation `json:"details,omitempty"`
	// Unclassified marks errors whose details were withheld from the caller.
	Unclassified bool `json:"-"`
}

// Normalize converts err into a status code and a caller-safe detail list.
func Normalize(err error) Response {
	var f *Failure
	if errors.As(err, &f) && f.Kind == KindValidation {
		return Response{Status: http.StatusBadRequest, Details: f.Details}
	}

	var cv ConstraintViolator
	if errors.As(err, &cv) {
		return Response{Status: http.StatusBadRequest, Details: cv.ConstraintViolations()}
	}

	if f != nil {
		switch f.Kind {
		case KindUnauthorized, KindForbidden, KindNotFound, KindConflict:
			return Response{Status: f.Kind.Status(), Details: f.Details}
		}
	}

	return Response{Status: http.StatusInternalServerError, Unclassified: true}
}
