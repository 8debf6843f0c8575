package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure taxonomy for upstream calls. Everything else is surfaced verbatim.
var (
	// ErrUnavailable is a transient upstream outage; the user may retry.
	ErrUnavailable = errors.New("model service unavailable")
	// ErrQuotaExceeded means the current credential is out of quota; not
	// retryable, the caller should offer the export fallback instead.
	ErrQuotaExceeded = errors.New("model quota exceeded")
)

// classifyStatus maps a non-2xx upstream status to the failure taxonomy.
func classifyStatus(provider string, status int, detail string) error {
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: %s", provider, ErrQuotaExceeded, detail)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%s: %w: %s", provider, ErrUnavailable, detail)
	default:
		return fmt.Errorf("%s: status %d: %s", provider, status, detail)
	}
}
