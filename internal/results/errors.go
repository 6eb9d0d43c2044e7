package results

import (
	"errors"
	"net/http"
)

// Domain errors for result operations.
var (
	ErrNotFound       = errors.New("result not found")
	ErrDuplicate      = errors.New("result already exists")
	ErrInvalidPayload = errors.New("result payload must be a JSON object")
)

// MapHTTPStatus maps result domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidPayload) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
