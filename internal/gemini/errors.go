package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

var (
	ErrMissingAPIKey    = errors.New("gemini: api key required")
	ErrNoCandidates     = errors.New("gemini: no candidates returned")
	ErrUnsupportedBySDK = errors.New("gemini: request needs features the sdk transport lacks")
)

// StatusError is a non-200 reply from the REST endpoint
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini request: http %d (%s): %s", e.StatusCode, e.Status, strings.TrimSpace(e.Body))
	}
	return fmt.Sprintf("gemini request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// IsQuotaExceeded reports whether err signals HTTP 429 or resource exhaustion
func IsQuotaExceeded(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.Status == "RESOURCE_EXHAUSTED"
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}

	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "Error 429")
}
