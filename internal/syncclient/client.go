// Package syncclient implements the client half of the attendance sync
// protocol: reads of the 3-day window and optimistic flag toggles with
// rollback on failure.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mealtrack/internal/identity"
	"mealtrack/internal/meals"
)

// Client calls the attendance API. Requests carry the configured timeout and
// transient failures are retried once; anything past that surfaces as an
// error for the caller to roll back on.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client with the given per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// NormalizeManualCode prepares a typed identifier for lookup. Scanned codes
// are used verbatim; manual entry is trimmed and uppercased.
func NormalizeManualCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup resolves a code to a user. An unknown code returns
// identity.ErrNotFound.
func (c *Client) Lookup(ctx context.Context, code string) (*identity.User, error) {
	var u identity.User
	if err := c.getJSON(ctx, "/api/users/"+code, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Window fetches the user's current 3-day attendance view.
func (c *Client) Window(ctx context.Context, userID string) (meals.Window, error) {
	var w meals.Window
	err := c.getJSON(ctx, "/api/meals/"+userID, &w)
	return w, err
}

// Dates fetches the current window dates.
func (c *Client) Dates(ctx context.Context) ([]string, error) {
	var ds []string
	err := c.getJSON(ctx, "/api/dates", &ds)
	return ds, err
}

// SetFlag writes one meal flag. Retried once on transport errors and 5xx
// responses; 4xx responses are terminal.
func (c *Client) SetFlag(ctx context.Context, userID, date string, meal meals.Type, status bool) error {
	body, err := json.Marshal(map[string]any{
		"userId":   userID,
		"date":     date,
		"mealType": string(meal),
		"status":   status,
	})
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		retry, err := c.postOnce(ctx, "/api/meals", body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return lastErr
}

// postOnce performs one POST. The bool reports whether the failure is worth
// one more attempt.
func (c *Client) postOnce(ctx context.Context, path string, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return true, fmt.Errorf("server error: %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return false, apiError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return false, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return identity.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%s: %s", resp.Status, body.Error)
	}
	return fmt.Errorf("unexpected status: %s", resp.Status)
}
