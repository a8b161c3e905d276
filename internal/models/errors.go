package models

import "errors"

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when a request is missing required fields
	// or carries malformed values (e.g. an empty items list).
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation is returned when an entity-level constraint is violated,
	// such as an enum value outside its closed set or a broken totals invariant.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when the requesting actor lacks the required
	// role or ownership for the operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTransition is returned when a lifecycle guard rejects the
	// requested state change, e.g. cancelling an order whose payment has
	// already completed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict is returned when a uniqueness constraint is violated,
	// such as a second review for the same (user, restaurant) pair.
	ErrConflict = errors.New("resource already exists")

	// ErrExternalService is returned when the payment provider is unreachable
	// or reports an error. Absence of confirmation is failure, never success.
	ErrExternalService = errors.New("external service failure")

	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
