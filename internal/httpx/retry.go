package httpx

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultRetries = 3

// DefaultRetryOn lists the response statuses considered transient.
var DefaultRetryOn = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
}

// Transport retries transient failures with exponential backoff. A
// Retry-After header on the response takes precedence over the computed
// delay. Requests with a body are only retried when GetBody is available.
type Transport struct {
	// Base is the underlying round tripper. nil means http.DefaultTransport.
	Base http.RoundTripper

	// Retries is the maximum number of retry attempts (not counting the
	// initial request). Zero means DefaultRetries.
	Retries int

	// RetryOn is the set of statuses to retry. Empty means DefaultRetryOn.
	RetryOn []int

	// Backoff computes the delay before the given retry attempt (1-based).
	// nil means attempt^2 seconds.
	Backoff func(attempt int) time.Duration
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) retries() int {
	if t.Retries > 0 {
		return t.Retries
	}
	return DefaultRetries
}

func (t *Transport) shouldRetry(status int) bool {
	retryOn := t.RetryOn
	if len(retryOn) == 0 {
		retryOn = DefaultRetryOn
	}
	for _, s := range retryOn {
		if s == status {
			return true
		}
	}
	return false
}

func (t *Transport) delay(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if after := resp.Header.Get("Retry-After"); after != "" {
			if secs, err := strconv.Atoi(after); err == nil {
				return time.Duration(secs) * time.Second
			}
		}
	}
	if t.Backoff != nil {
		return t.Backoff(attempt)
	}
	return time.Duration(attempt*attempt) * time.Second
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			// replay the body for retried requests
			if req.Body != nil {
				if req.GetBody == nil {
					return resp, err
				}
				body, bodyErr := req.GetBody()
				if bodyErr != nil {
					return nil, fmt.Errorf("replaying request body: %w", bodyErr)
				}
				req.Body = body
			}

			delay := t.delay(attempt, resp)
			log.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Msg("retrying request")

			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(delay):
			}
		}

		if resp != nil {
			_ = resp.Body.Close()
		}

		resp, err = t.base().RoundTrip(req)
		if attempt >= t.retries() {
			return resp, err
		}
		if err == nil && !t.shouldRetry(resp.StatusCode) {
			return resp, nil
		}
	}
}

// NewClient returns an HTTP client with retry support and the given timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &Transport{},
	}
}
