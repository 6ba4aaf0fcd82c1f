package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"location_saver_backend/platform/httpkit"
)

const defaultTimeout = 10 * time.Second

// Error is a failure the UI may show as-is.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// api is the shared JSON transport of the gateways.
type api struct {
	baseURL string
	http    *http.Client
}

func newAPI(baseURL string, httpClient *http.Client) api {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return api{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// do sends body as JSON and decodes a 2xx response into out. Any failure is
// returned as *Error carrying the server's message, or fallback when the
// server gave none.
func (a api) do(ctx context.Context, method, path string, header http.Header, body, out interface{}, fallback string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return &Error{Message: fallback}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: fallback}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var payload httpkit.ErrorResponse
		if json.Unmarshal(data, &payload) == nil && strings.TrimSpace(payload.Error) != "" {
			return &Error{Status: resp.StatusCode, Message: payload.Error}
		}
		return &Error{Status: resp.StatusCode, Message: fallback}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: fallback}
	}
	return nil
}
