package fetch

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors returned before any request is sent.
var (
	ErrEmptyURL      = errors.New("fetch: empty URL")
	ErrInvalidMethod = errors.New("fetch: unsupported method")
)

// StatusError reports a non-2xx response that survived the retry policy.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
	// Snippet is the start of the response body, for logs.
	Snippet string

	retryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// GetStatusCode lets the retry policy classify the failure.
func (e *StatusError) GetStatusCode() int {
	return e.StatusCode
}

// RetryAfter is the server-requested delay, zero when none was sent.
func (e *StatusError) RetryAfter() time.Duration {
	return e.retryAfter
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
