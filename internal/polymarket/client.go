package polymarket

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

const defaultBaseURL = "https://gamma-api.polymarket.com/markets"

// Client fetches open Polymarket markets from the Gamma API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// Config controls optional overrides for the client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// NewClient builds a Polymarket client with sane defaults.
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
	return string(models.VenuePolymarket)
}

// Fetch returns the projected catalog.
func (c *Client) Fetch(ctx context.Context, opts collectors.FetchOptions) ([]models.Market, error) {
	raw, err := c.FetchRaw(ctx, opts)
	if err != nil {
		return nil, err
	}
	return ProjectAll(raw), nil
}

// FetchRaw pages through open markets. A page shorter than the page size ends
// the walk early.
func (c *Client) FetchRaw(ctx context.Context, opts collectors.FetchOptions) ([]Market, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	pages := opts.Pages
	if pages <= 0 {
		pages = 1
	}

	var out []Market
	for page := 0; page < pages; page++ {
		offset := page * pageSize
		list, err := c.listMarkets(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("polymarket list markets (offset %d): %w", offset, err)
		}
		logging.Debugf("[polymarket] fetched %d markets (offset: %d)", len(list), offset)
		out = append(out, list...)
		if len(list) < pageSize {
			break
		}
	}
	return out, nil
}

func (c *Client) listMarkets(ctx context.Context, limit, offset int) ([]Market, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("closed", "false")
	q.Set("active", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	var markets []Market
	if err := c.do(ctx, req, &markets); err != nil {
		return nil, err
	}
	return markets, nil
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
		return fmt.Errorf("polymarket API %s: %s", resp.Status, string(body))
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
