package zulip

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingCredentials is returned by New if site, email or API key are empty.
var ErrMissingCredentials = errors.New("zulip site, email and api key are required")

// APIError is a non rate limit error response.
type APIError struct {
	Endpoint string
	Status   int
	Code     string
	Msg      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zulip %s: %d %s: %s", e.Endpoint, e.Status, e.Code, e.Msg)
}

// RateLimitError is a RATE_LIMIT_HIT response.
type RateLimitError struct {
	Endpoint string
	Wait     time.Duration // as sent by the server
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("zulip %s: rate limit hit, retry after %s", e.Endpoint, e.Wait)
}

// RetryAfter waits one second longer than the server asked for.
func (e *RateLimitError) RetryAfter() time.Duration {
	return e.Wait + time.Second
}
