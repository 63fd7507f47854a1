package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/upskill-advisor/internal/types"
)

// StatusError is returned for a non-2xx reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("advise returned %d: %s", e.StatusCode, e.Body)
}

// HTTPTarget posts requests to a running advise endpoint.
type HTTPTarget struct {
	URL    string
	client *http.Client
}

// NewHTTPTarget creates a target for url with a per-request timeout.
func NewHTTPTarget(url string, timeout time.Duration) *HTTPTarget {
	return &HTTPTarget{URL: url, client: &http.Client{Timeout: timeout}}
}

// Advise posts req as JSON. Each call carries a fresh X-Request-ID so server
// logs can be matched to evaluation rows.
func (t *HTTPTarget) Advise(ctx context.Context, req *types.AdviseRequest) (*types.AdviseResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("advise request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	var out types.AdviseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
