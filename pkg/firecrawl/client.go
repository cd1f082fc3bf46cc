// Package firecrawl is a client for the Firecrawl prompt-driven
// structured-extraction API.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Firecrawl API.
const defaultBaseURL = "https://api.firecrawl.dev/v1"

// Client defines the extraction operations used by the pipeline.
type Client interface {
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)
}

// ExtractRequest is the body for POST /extract: one or more URLs plus a
// natural-language prompt describing the structure to pull out.
type ExtractRequest struct {
	URLs   []string `json:"urls"`
	Prompt string   `json:"prompt"`
}

// ExtractResponse is the normalized response from POST /extract. The API
// returns data as either a single object or a one-element array depending
// on the request shape; normalization happens here so callers never
// re-check the shape.
type ExtractResponse struct {
	Success bool
	Data    map[string]any
	Error   string
}

// rawExtractResponse mirrors the wire shape before normalization.
type rawExtractResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// APIError is returned when Firecrawl responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("firecrawl: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsPaymentRequired reports whether err is the API's quota-exhausted
// signal (HTTP 402), which callers may treat as a soft condition.
func IsPaymentRequired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusPaymentRequired
}

// IsAPIError reports whether err carries an HTTP-level response from the
// service, as opposed to a transport failure that never got one.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Firecrawl client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "firecrawl: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(buf))
	if err != nil {
		return nil, eris.Wrap(err, "firecrawl: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "firecrawl: execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "firecrawl: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	var raw rawExtractResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "firecrawl: decode response")
	}

	return normalize(raw)
}

// normalize flattens the array-or-object data field into a single object.
func normalize(raw rawExtractResponse) (*ExtractResponse, error) {
	out := &ExtractResponse{
		Success: raw.Success,
		Error:   raw.Error,
	}
	if len(raw.Data) == 0 {
		return out, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw.Data, &obj); err == nil {
		out.Data = obj
		return out, nil
	}

	var arr []map[string]any
	if err := json.Unmarshal(raw.Data, &arr); err == nil {
		if len(arr) > 0 {
			out.Data = arr[0]
		}
		return out, nil
	}

	return nil, eris.New("firecrawl: unexpected data shape")
}
