package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hetulpatel/arbscanner/internal/collectors"
	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/models"
)

const defaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2/markets"

// Client talks to the Kalshi Trade API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// Config provides optional overrides.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// NewClient builds a configured Kalshi API client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 5
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: retries,
	}
}

func (c *Client) Name() string {
	return string(models.VenueKalshi)
}

// Fetch returns the projected catalog.
func (c *Client) Fetch(ctx context.Context, opts collectors.FetchOptions) ([]models.Market, error) {
	raw, err := c.FetchRaw(ctx, opts)
	if err != nil {
		return nil, err
	}
	return ProjectAll(raw), nil
}

// FetchRaw follows the cursor for up to opts.Pages pages of open markets.
func (c *Client) FetchRaw(ctx context.Context, opts collectors.FetchOptions) ([]Market, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 200
	}
	if pageSize > 1000 {
		pageSize = 1000 // API limit
	}
	pages := opts.Pages
	if pages <= 0 {
		pages = 1
	}

	var (
		out    []Market
		cursor string
	)
	for page := 0; page < pages; page++ {
		resp, err := c.listMarkets(ctx, pageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("list kalshi markets: %w", err)
		}
		logging.Debugf("[kalshi] fetched %d markets (cursor: %s)", len(resp.Markets), cursor)
		out = append(out, resp.Markets...)
		cursor = resp.Cursor
		if cursor == "" {
			break
		}
	}
	return out, nil
}

func (c *Client) listMarkets(ctx context.Context, limit int, cursor string) (*marketsResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("status", "open")
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	var out marketsResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, req *http.Request, dst any) error {
	var attempt int
	for {
		attempt++
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() == nil && c.shouldRetry(attempt, 0) {
				if err := sleep(ctx, attempt); err != nil {
					return err
				}
				continue
			}
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer resp.Body.Close()
			return json.NewDecoder(resp.Body).Decode(dst)
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()

		if c.shouldRetry(attempt, resp.StatusCode) {
			if err := sleep(ctx, attempt); err != nil {
				return err
			}
			continue
		}
		return fmt.Errorf("kalshi API %s: %s", resp.Status, string(body))
	}
}

func (c *Client) shouldRetry(attempt int, status int) bool {
	if attempt >= c.maxRetries {
		return false
	}
	if status == 0 {
		return true
	}
	return status == http.StatusTooManyRequests || status >= 500
}

func sleep(ctx context.Context, attempt int) error {
	backoff := time.Duration(1<<uint(attempt-1)) * 250 * time.Millisecond
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	t := time.NewTimer(backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type marketsResponse struct {
	Markets []Market `json:"markets"`
	Cursor  string   `json:"cursor"`
}
