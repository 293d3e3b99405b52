// Package errs defines the error kinds shared by the client, the processors
// and the analyzer. Callers wrap them with fmt.Errorf("%w: ...") and test
// with errors.Is.
package errs

import (
	"errors"
	"net/http"
)

var (
	// ErrRateLimited is returned when SEC keeps answering 429 after every retry.
	ErrRateLimited = errors.New("SEC API rate limit exceeded")

	// ErrDataRetrieval wraps transport, status and decoding failures once
	// retries are exhausted.
	ErrDataRetrieval = errors.New("failed to retrieve SEC data")

	// ErrInvalidIdentifier is a malformed CIK. Never retried.
	ErrInvalidIdentifier = errors.New("invalid CIK")

	// ErrInvalidArgument covers unsupported metrics, out of range quarters
	// and similar precondition failures. Never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrProcessing is raised when a statement cannot be built from the facts.
	ErrProcessing = errors.New("processing error")

	// ErrNotFound is a record missing from the local database.
	ErrNotFound = errors.New("not found")
)

// HTTPStatus maps an error kind to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidIdentifier), errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrProcessing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRateLimited):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrDataRetrieval):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
