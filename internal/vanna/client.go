// Package vanna is the outbound client for the text-to-SQL service.
package vanna

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no base URL is set.
var ErrNotConfigured = errors.New("VANNA_API_BASE_URL not configured")

// maxErrorBody caps how much of a failed upstream response is kept.
const maxErrorBody = 64 << 10

// UpstreamError is a non-2xx answer from the service.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("vanna: upstream status %d", e.Status)
}

// ChatResponse is the service's JSON answer, kept verbatim, plus the
// generated SQL when the answer carries one.
type ChatResponse struct {
	Raw json.RawMessage
	SQL *string
}

// Client talks to the service over one shared connection pool.
type Client struct {
	baseURL     string
	apiKey      string
	chatTimeout time.Duration
	http        *http.Client
}

// NewClient builds a client. An empty baseURL yields a client whose calls
// all fail with ErrNotConfigured. chatTimeout bounds the synchronous call
// only; streams live as long as their context.
func NewClient(baseURL, apiKey string, chatTimeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		chatTimeout: chatTimeout,
		http:        &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
	}
}

// Configured reports whether a base URL is set.
func (c *Client) Configured() bool { return c != nil && c.baseURL != "" }

// Chat posts {"question": prompt} to /chat and returns the JSON answer.
func (c *Client) Chat(ctx context.Context, prompt string) (*ChatResponse, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if c.chatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.chatTimeout)
		defer cancel()
	}

	body, err := json.Marshal(map[string]string{"question": prompt})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(resp)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	return &ChatResponse{Raw: raw, SQL: extractSQL(raw)}, nil
}

// Stream opens GET /chat-stream?question=prompt and returns the event
// stream body. The caller closes it; cancelling ctx aborts the read.
func (c *Client) Stream(ctx context.Context, prompt string) (io.ReadCloser, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	u := c.baseURL + "/chat-stream?" + url.Values{"question": {prompt}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stream request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, upstreamError(resp)
	}
	return resp.Body, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

func upstreamError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &UpstreamError{Status: resp.StatusCode, Body: string(b)}
}

// extractSQL returns the "sql" member when it is a non-empty string.
func extractSQL(raw json.RawMessage) *string {
	var probe struct {
		SQL any `json:"sql"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil
	}
	if s, ok := probe.SQL.(string); ok && s != "" {
		return &s
	}
	return nil
}
