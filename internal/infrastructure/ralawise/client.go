package ralawise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"ralawise-shopify-sync/internal/domain"

	"github.com/rs/zerolog"
)

// defaultRetryAfter is the pause before the single rate-limit retry when the
// server supplies no hint.
const defaultRetryAfter = 2200 * time.Millisecond

// tokenExpirySkew refreshes the cached credential slightly before the server
// says it expires.
const tokenExpirySkew = 30 * time.Second

// Client talks to the Ralawise API. It manages its own bearer credential:
// logs in when the cached token is absent or expired and caches it for the
// client's lifetime. Safe for use from a single sync worker; the mutex keeps
// only one refresh in flight.
type Client struct {
	baseURL  string
	user     string
	password string
	http     *http.Client
	logger   zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a Ralawise API client.
func NewClient(baseURL, user, password string, callTimeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		user:     user,
		password: password,
		http:     &http.Client{Timeout: callTimeout},
		logger:   logger,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// stockResponse mirrors the nested shape of the inventory endpoint. Only the
// first product's first variant is relevant.
type stockResponse struct {
	ProductGroup struct {
		Products []struct {
			Variants []struct {
				SKU            string `json:"sku"`
				AvailableStock struct {
					Quantity *int `json:"quantity"`
				} `json:"availableStock"`
			} `json:"variants"`
		} `json:"products"`
	} `json:"productGroup"`
}

// GetStock returns the supplier's stock record for a SKU. A 404, or a payload
// with no variant data, yields a result with a nil quantity rather than an
// error. On a 429 the client waits the server's Retry-After hint (or a fixed
// default) and retries exactly once before surfacing the failure.
func (c *Client) GetStock(ctx context.Context, sku string) (*domain.StockResult, error) {
	return c.getStock(ctx, sku, true)
}

func (c *Client) getStock(ctx context.Context, sku string, allowRetry bool) (*domain.StockResult, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/inventory/%s", c.baseURL, sku)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stock request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock for %s: %w", sku, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Fall through to parsing below.
	case http.StatusNotFound:
		c.logger.Warn().Str("sku", sku).Msg("Ralawise SKU not found")
		return &domain.StockResult{}, nil
	case http.StatusTooManyRequests:
		if !allowRetry {
			return nil, &domain.RateLimitedError{RetryAfter: retryAfterHint(resp)}
		}
		wait := retryAfterHint(resp)
		if wait <= 0 {
			wait = defaultRetryAfter
		}
		c.logger.Warn().Str("sku", sku).Dur("wait", wait).Msg("Ralawise rate limit hit, retrying once")
		c.sleep(ctx, wait)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return c.getStock(ctx, sku, false)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ralawise stock request for %s: status %d, body: %s", sku, resp.StatusCode, body)
	}

	var payload stockResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode stock response for %s: %w", sku, err)
	}

	if len(payload.ProductGroup.Products) == 0 || len(payload.ProductGroup.Products[0].Variants) == 0 {
		c.logger.Warn().Str("sku", sku).Msg("no variant data in Ralawise response")
		return &domain.StockResult{}, nil
	}

	variant := payload.ProductGroup.Products[0].Variants[0]
	return &domain.StockResult{
		SKU:      variant.SKU,
		Quantity: variant.AvailableStock.Quantity,
	}, nil
}

// getToken returns the cached credential, logging in when it is absent or
// within the expiry skew.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Add(tokenExpirySkew).Before(c.tokenExpiry) {
		return c.token, nil
	}
	return c.login(ctx, true)
}

// login acquires a fresh credential. A rate-limited login waits the server's
// hint (or the fixed default) and retries exactly once, like the stock fetch.
// Caller holds c.mu.
func (c *Client) login(ctx context.Context, allowRetry bool) (string, error) {
	c.logger.Info().Msg("logging into Ralawise")

	body, err := json.Marshal(map[string]string{
		"user":     c.user,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to authenticate with Ralawise: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		if !allowRetry {
			return "", &domain.RateLimitedError{RetryAfter: retryAfterHint(resp)}
		}
		wait := retryAfterHint(resp)
		if wait <= 0 {
			wait = defaultRetryAfter
		}
		c.logger.Warn().Dur("wait", wait).Msg("Ralawise login rate limit hit, retrying once")
		c.sleep(ctx, wait)
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return c.login(ctx, false)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ralawise login: status %d, body: %s", resp.StatusCode, respBody)
	}

	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("ralawise login returned empty token")
	}

	c.token = payload.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	c.logger.Info().Time("expires", c.tokenExpiry).Msg("Ralawise token acquired")
	return c.token, nil
}

func retryAfterHint(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}
