package websearch

import "errors"

// ErrNoProvider is returned when neither search backend is configured.
var ErrNoProvider = errors.New("no search provider configured")

// ErrProviderRequest wraps a failed backend call (network or HTTP). Callers
// that can produce a meaningful degraded result absorb it locally.
var ErrProviderRequest = errors.New("search provider request failed")

// retryableError wraps an error to indicate it can be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryableError checks if an error should be retried.
func isRetryableError(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
