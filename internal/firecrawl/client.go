// Package firecrawl is a minimal client for the Firecrawl extract API.
//
// Only the structured extraction endpoint is covered. An extraction either
// completes inline or returns a job ID that is polled until it finishes.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the hosted Firecrawl API.
	DefaultBaseURL = "https://api.firecrawl.dev"

	defaultPollInterval = 2 * time.Second
	defaultMaxPolls     = 60
)

// Client is a client for the Firecrawl API
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	maxPolls     int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithPollInterval sets the wait between job status checks.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = interval
	}
}

// WithMaxPolls caps how many times a pending job is checked.
func WithMaxPolls(n int) Option {
	return func(c *Client) {
		c.maxPolls = n
	}
}

// NewClient creates a new Firecrawl client authenticated with apiKey
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExtractRequest is the body of an extraction job.
type ExtractRequest struct {
	URLs   []string               `json:"urls"`
	Prompt string                 `json:"prompt,omitempty"`
	Schema map[string]interface{} `json:"schema,omitempty"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("firecrawl: status %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

type jobResponse struct {
	Success bool            `json:"success"`
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (r *jobResponse) hasData() bool {
	return len(r.Data) > 0 && string(r.Data) != "null"
}

// Extract runs a structured extraction and returns the raw response body of
// the finished job. The body carries the extracted payload under "data".
func (c *Client) Extract(ctx context.Context, req ExtractRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/v1/extract", payload)
	if err != nil {
		return nil, err
	}

	var job jobResponse
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if job.hasData() {
		return body, nil
	}
	if job.ID == "" {
		return nil, fmt.Errorf("firecrawl: extract returned neither data nor job id")
	}

	return c.poll(ctx, job.ID)
}

func (c *Client) poll(ctx context.Context, jobID string) ([]byte, error) {
	for i := 0; i < c.maxPolls; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		body, err := c.do(ctx, http.MethodGet, "/v1/extract/"+jobID, nil)
		if err != nil {
			return nil, err
		}

		var job jobResponse
		if err := json.Unmarshal(body, &job); err != nil {
			return nil, fmt.Errorf("parsing job status: %w", err)
		}

		switch job.Status {
		case "completed":
			return body, nil
		case "failed", "cancelled":
			return nil, fmt.Errorf("firecrawl: extract job %s %s: %s", jobID, job.Status, job.Error)
		}
	}

	return nil, fmt.Errorf("firecrawl: extract job %s still pending after %d polls", jobID, c.maxPolls)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	return body, nil
}

// errorMessage pulls the "error" field out of an error body, falling back to
// the raw text.
func errorMessage(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return strings.TrimSpace(string(body))
}
