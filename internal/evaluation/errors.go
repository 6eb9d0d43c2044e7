package evaluation

import (
	"errors"
	"net/http"
)

// Domain errors for evaluation operations.
var (
	ErrNotFound    = errors.New("no evaluation report found")
	ErrInvalidMode = errors.New("invalid evaluation mode")
)

// MapHTTPStatus maps evaluation errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidMode) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
