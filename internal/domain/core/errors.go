// Package core holds the types shared by every registry: the principal
// identifier and the error taxonomy every operation resolves to. Each
// mutating operation either fully commits or returns exactly one of these
// kinds; handlers translate them to HTTP statuses in one place.
package core

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput rejects malformed or missing request fields before
	// any state is touched. Wrap it with the field detail:
	// fmt.Errorf("%w: name is required", core.ErrInvalidInput).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized means a role check failed: the caller does not hold
	// the role the entry point requires.
	ErrUnauthorized = errors.New("caller lacks the required role")

	// ErrForbidden means the caller holds an acceptable role but is not the
	// specific principal the operation demands (not the authoring
	// practitioner, not the owning facility, not the named insurer).
	ErrForbidden = errors.New("caller is not the required principal")

	ErrAlreadyRegistered = errors.New("principal is already registered")
	ErrNotFound          = errors.New("not found")

	ErrInactiveFacility     = errors.New("facility is deactivated")
	ErrInactivePractitioner = errors.New("practitioner is deactivated")
	ErrInactiveIndividual   = errors.New("individual is deactivated")

	// ErrAlreadyPending rejects a second review request while one is open.
	ErrAlreadyPending = errors.New("a review application is already pending")

	// ErrInvalidState rejects a state-machine transition from a state that
	// does not permit it.
	ErrInvalidState = errors.New("transition not allowed from the current state")

	// ErrAccessDenied means the consent check on an aggregated-history read
	// failed; the caller should request a grant from the patient.
	ErrAccessDenied = errors.New("no consent grant covers this history")
)

// HTTPStatus maps an error kind to the status the HTTP layer should return.
// Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrAlreadyPending),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrInactiveFacility),
		errors.Is(err, ErrInactivePractitioner),
		errors.Is(err, ErrInactiveIndividual):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
