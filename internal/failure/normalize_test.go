package failure

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

type fakeConstraintError struct {
	violations []Violation
}

func (e *fakeConstraintError) Error() string { return "constraint" }

func (e *fakeConstraintError) ConstraintViolations() []Violation { return e.violations }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantDetails []Violation
		wantHidden  bool
	}{
		{
			name:        "validation passes details through",
			err:         Validation(Violation{Field: "fsk", Kind: ViolationOneOf}),
			wantStatus:  http.StatusBadRequest,
			wantDetails: []Violation{{Field: "fsk", Kind: ViolationOneOf}},
		},
		{
			name:        "wrapped validation",
			err:         errors.Wrap(Validation(Violation{Field: "id", Kind: ViolationObjectID}), "get movie"),
			wantStatus:  http.StatusBadRequest,
			wantDetails: []Violation{{Field: "id", Kind: ViolationObjectID}},
		},
		{
			name:        "storage constraint re-mapped",
			err:         fmt.Errorf("insert: %w", &fakeConstraintError{violations: []Violation{{Field: "tmdbID", Kind: ViolationUnique}}}),
			wantStatus:  http.StatusBadRequest,
			wantDetails: []Violation{{Field: "tmdbID", Kind: ViolationUnique}},
		},
		{
			name:       "not found has no details",
			err:        NotFound(),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unauthorized",
			err:        Unauthorized(),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "forbidden",
			err:        Forbidden(),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "conflict",
			err:        Conflict(),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unclassified hides details",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantHidden: true,
		},
		{
			name:       "unknown failure kind",
			err:        &Failure{Kind: Kind(99), Details: []Violation{{Field: "x", Kind: ViolationString}}},
			wantStatus: http.StatusInternalServerError,
			wantHidden: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.err)
			if got.Status != tt.wantStatus {
				t.Fatalf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
			if diff := cmp.Diff(tt.wantDetails, got.Details); diff != "" {
				t.Fatalf("Details mismatch (-want +got):\n%s", diff)
			}
			if got.Unclassified != tt.wantHidden {
				t.Fatalf("Unclassified = %v, want %v", got.Unclassified, tt.wantHidden)
			}
			if got.Unclassified && got.Details != nil {
				t.Fatalf("unclassified response leaked details: %+v", got.Details)
			}
		})
	}
}

func TestFailureError(t *testing.T) {
	err := Validation(
		Violation{Field: "rating.rt", Kind: ViolationRequired},
		Violation{Field: "fsk", Kind: ViolationOneOf},
	)
	want := "failure: validation: rating.rt (required), fsk (oneOf)"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
	if NotFound().Error() != "failure: not found" {
		t.Fatalf("unexpected NotFound message %q", NotFound().Error())
	}
}
