// Package botapi is the HTTP client for the trading bot's control and
// status API.
package botapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"polywatch/internal/status"
)

// Client talks to the bot server. The zero value is not usable; construct
// with NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL (e.g.
// "http://localhost:5000"). Requests are bounded by a fixed timeout so a
// hung server delays at most one poll cycle.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// BaseURL returns the configured server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status fetches and decodes one full status snapshot.
func (c *Client) Status(ctx context.Context) (*status.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}
	return status.Decode(resp.Body)
}

// Start asks the server to start the bot. The response body is ignored;
// callers follow up with an immediate poll to learn the true state.
func (c *Client) Start(ctx context.Context) error {
	return c.post(ctx, "/api/bot/start")
}

// Stop asks the server to stop the bot. Like Start, fire-and-forget.
func (c *Client) Stop(ctx context.Context) error {
	return c.post(ctx, "/api/bot/stop")
}

func (c *Client) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}
	return nil
}
