package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the omerta ops API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/healthz", nil, &out)
	return out, err
}

func (c *Client) ListTurfs(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/turfs", nil, &out)
	return out, err
}

func (c *Client) TurfDetail(ctx context.Context, name string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/turfs/"+url.PathEscape(name), nil, &out)
	return out, err
}

func (c *Client) OpenHits(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/hits", nil, &out)
	return out, err
}

func (c *Client) PlayerLeaderboard(ctx context.Context, limit int) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/leaderboard/players?limit="+strconv.Itoa(limit), nil, &out)
	return out, err
}

func (c *Client) FamilyLeaderboard(ctx context.Context, limit int) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/leaderboard/families?limit="+strconv.Itoa(limit), nil, &out)
	return out, err
}

func (c *Client) Account(ctx context.Context, userID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/accounts/"+url.PathEscape(userID), nil, &out)
	return out, err
}

func (c *Client) Family(ctx context.Context, name string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/families/"+url.PathEscape(name), nil, &out)
	return out, err
}

func (c *Client) SeedTurfs(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/admin/seed-turfs", nil, &out)
	return out, err
}

func (c *Client) SweepIncome(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/admin/sweep-income", nil, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
