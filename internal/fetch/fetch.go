// Package fetch issues single-shot JSON requests and classifies failures.
// There are no retries and no timeouts here; callers own that policy.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Kind classifies a failed request.
type Kind string

const (
	// KindInvalidJSON means the response body could not be parsed.
	KindInvalidJSON Kind = "InvalidJson"
	// KindRequestFailed means the status code was outside 2xx.
	KindRequestFailed Kind = "RequestFailed"
)

// Error describes a failed request. Payload is set only for
// KindRequestFailed, so callers can inspect API-level error detail.
type Error struct {
	Kind    Kind
	Status  int
	URL     string
	Payload json.RawMessage
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidJSON:
		return fmt.Sprintf("invalid JSON response from %s (status %d)", e.URL, e.Status)
	default:
		return fmt.Sprintf("request to %s failed with status %d", e.URL, e.Status)
	}
}

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultClient has no timeout.
var DefaultClient Doer = &http.Client{}

// JSON executes req and returns the raw JSON body. The body is parsed
// regardless of status; an unparsable body wins over a bad status.
func JSON(doer Doer, req *http.Request) (json.RawMessage, error) {
	if doer == nil {
		doer = DefaultClient
	}
	url := req.URL.String()

	resp, err := doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http %s %s: %w", req.Method, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", url, err)
	}

	if !json.Valid(body) {
		return nil, &Error{Kind: KindInvalidJSON, Status: resp.StatusCode, URL: url}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:    KindRequestFailed,
			Status:  resp.StatusCode,
			URL:     url,
			Payload: json.RawMessage(body),
		}
	}

	return json.RawMessage(body), nil
}

// Get builds a GET request with the given headers and runs it through JSON.
func Get(ctx context.Context, doer Doer, url string, headers map[string]string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return JSON(doer, req)
}
