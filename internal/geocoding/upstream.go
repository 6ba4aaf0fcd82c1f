package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 200 * time.Millisecond
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Code, e.Body)
}

// upstream performs JSON GETs against a provider with retries on transient
// failures. An optional limiter throttles every attempt.
type upstream struct {
	client      *http.Client
	userAgent   string
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
}

func newUpstream(timeout time.Duration, userAgent string, limiter *rate.Limiter) *upstream {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &upstream{
		client:      &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		limiter:     limiter,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
}

// getJSON issues GET reqURL and decodes the body into out.
func (u *upstream) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	resp, err := u.doWithRetry(ctx, reqURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (u *upstream) do(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if u.userAgent != "" {
		req.Header.Set("User-Agent", u.userAgent)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// doWithRetry retries network errors and 429/5xx responses with exponential
// backoff while respecting context cancellation.
func (u *upstream) doWithRetry(ctx context.Context, reqURL string) (*http.Response, error) {
	backoff := u.backoff
	var lastErr error

	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		if u.limiter != nil {
			if err := u.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := u.do(ctx, reqURL)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == u.maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
