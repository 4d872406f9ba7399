// Package failure defines the tagged error variant surfaced by the service
// layer and the single translation of errors into HTTP responses.
package failure

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind tags a deliberate domain failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Status maps the kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ViolationKind is the machine-readable reason a field was rejected.
type ViolationKind string

const (
	ViolationRequired   ViolationKind = "required"
	ViolationInteger    ViolationKind = "integer"
	ViolationString     ViolationKind = "string"
	ViolationBoolean    ViolationKind = "boolean"
	ViolationDate       ViolationKind = "date"
	ViolationObjectID   ViolationKind = "objectId"
	ViolationRange      ViolationKind = "range"
	ViolationOneOf      ViolationKind = "oneOf"
	ViolationMultipleOf ViolationKind = "multipleOf"
	ViolationMean       ViolationKind = "mean"
	ViolationUnique     ViolationKind = "unique"
	ViolationJSON       ViolationKind = "json"
)

// Violation pairs a field path with the reason it was rejected.
type Violation struct {
	Field string        `json:"field"`
	Kind  ViolationKind `json:"violationKind"`
}

// Failure is a deliberate error carrying a status-bearing kind and optional details.
type Failure struct {
	Kind    Kind
	Details []Violation
}

func (f *Failure) Error() string {
	if len(f.Details) == 0 {
		return "failure: " + f.Kind.String()
	}
	parts := make([]string, 0, len(f.Details))
	for _, d := range f.Details {
		parts = append(parts, d.Field+" ("+string(d.Kind)+")")
	}
	return fmt.Sprintf("failure: %s: %s", f.Kind, strings.Join(parts, ", "))
}

// Validation builds a validation failure from the collected violations.
func Validation(details ...Violation) *Failure {
	return &Failure{Kind: KindValidation, Details: details}
}

// NotFound reports that the referenced record does not exist.
func NotFound() *Failure { return &Failure{Kind: KindNotFound} }

// Unauthorized is reserved for authentication failures.
func Unauthorized() *Failure { return &Failure{Kind: KindUnauthorized} }

// Forbidden is reserved for authorization failures.
func Forbidden() *Failure { return &Failure{Kind: KindForbidden} }

// Conflict is reserved for state conflicts.
func Conflict() *Failure { return &Failure{Kind: KindConflict} }
