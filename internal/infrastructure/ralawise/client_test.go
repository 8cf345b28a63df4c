package ralawise

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func stockPayload(sku string, qty int) map[string]any {
	return map[string]any{
		"productGroup": map[string]any{
			"products": []any{
				map[string]any{
					"variants": []any{
						map[string]any{
							"sku": sku,
							"availableStock": map[string]any{
								"quantity": qty,
							},
						},
					},
				},
			},
		},
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "user", "pass", 5*time.Second, zerolog.Nop())
	var sleeps []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) {
		sleeps = append(sleeps, d)
	}
	return c, &sleeps
}

func loginHandler(logins *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(logins, 1)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"expires_in":   3600,
		})
	}
}

func TestGetStockParsesNestedResponse(t *testing.T) {
	var logins int32
	mux := http.NewServeMux()
	mux.Handle("/v1/login", loginHandler(&logins))
	mux.HandleFunc("/v1/inventory/JH001DPBK2XL", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(stockPayload("JH001DPBK2XL", 12))
	})

	c, _ := newTestClient(t, mux)

	res, err := c.GetStock(context.Background(), "JH001DPBK2XL")
	if err != nil {
		t.Fatal(err)
	}
	if res.SKU != "JH001DPBK2XL" {
		t.Errorf("expected sku JH001DPBK2XL, got %s", res.SKU)
	}
	if res.Quantity == nil || *res.Quantity != 12 {
		t.Errorf("expected quantity 12, got %v", res.Quantity)
	}
}

func TestGetStockNotFoundYieldsNilQuantity(t *testing.T) {
	var logins int32
	mux := http.NewServeMux()
	mux.Handle("/v1/login", loginHandler(&logins))
	mux.HandleFunc("/v1/inventory/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	c, _ := newTestClient(t, mux)

	res, err := c.GetStock(context.Background(), "UNKNOWNSKU")
	if err != nil {
		t.Fatal(err)
	}
	if res.Quantity != nil {
		t.Errorf("expected nil quantity, got %d", *res.Quantity)
	}
	if res.SKU != "" {
		t.Errorf("expected empty sku, got %s", res.SKU)
	}
}

func TestGetStockEmptyVariantsYieldsNilQuantity(t *testing.T) {
	var logins int32
	mux := http.NewServeMux()
	mux.Handle("/v1/login", loginHandler(&logins))
	mux.HandleFunc("/v1/inventory/", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"productGroup": map[string]any{"products": []any{}}})
	})

	c, _ := newTestClient(t, mux)

	res, err := c.GetStock(context.Background(), "JH001DPBKXS")
	if err != nil {
		t.Fatal(err)
	}
	if res.Quantity != nil {
		t.Error("expected nil quantity for empty payload")
	}
}

func TestGetStockRetriesOnceOnRateLimit(t *testing.T) {
	var logins, hits int32
	mux := http.NewServeMux()
	mux.Handle("/v1/login", loginHandler(&logins))
	mux.HandleFunc("/v1/inventory/JH001DPBKXS", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(stockPayload("JH001DPBKXS", 7))
	})

	c, sleeps := newTestClient(t, mux)

	res, err := c.GetStock(context.Background(), "JH001DPBKXS")
	if err != nil {
		t.Fatal(err)
	}
	if res.Quantity == nil || *res.Quantity != 7 {
		t.Errorf("expected quantity 7, got %v", res.Quantity)
	}
	if hits != 2 {
		t.Errorf("expected exactly one retry, got %d requests", hits)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] < 3*time.Second {
		t.Errorf("expected a single wait of at least 3s, got %v", *sleeps)
	}
}

func TestGetStockSurfacesSecondRateLimit(t *testing.T) {
	var logins int32
	mux := http.NewServeMux()
	mux.Handle("/v1/login", loginHandler(&logins))
	mux.HandleFunc("/v1/inventory/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	c, sleeps := newTestClient(t, mux)

	_, err := c.GetStock(context.Background(), "JH001DPBKXS")
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if len(*sleeps) != 1 {
		t.Errorf("expected exactly one backoff sleep, got %d", len(*sleeps))
	}
}

func TestLoginRetriesOnceOnRateLimit(t *testing.T) {
	var logins int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/login", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&logins, 1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v1/inventory/", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(stockPayload("JH001DPBKXS", 4))
	})

	c, sleeps := newTestClient(t, mux)

	res, err := c.GetStock(context.Background(), "JH001DPBKXS")
	if err != nil {
		t.Fatal(err)
	}
	if res.Quantity == nil || *res.Quantity != 4 {
		t.Errorf("expected quantity 4, got %v", res.Quantity)
	}
	if logins != 2 {
		t.Errorf("expected exactly one login retry, got %d attempts", logins)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] < 2*time.Second {
		t.Errorf("expected a single wait of at least 2s, got %v", *sleeps)
	}
}

func TestLoginSurfacesSecondRateLimit(t *testing.T) {
	var logins int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/login", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&logins, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	c, sleeps := newTestClient(t, mux)

	_, err := c.GetStock(context.Background(), "JH001DPBKXS")
	if err == nil {
		t.Fatal("expected error after login retries exhausted")
	}
	if logins != 2 {
		t.Errorf("expected exactly two login attempts, got %d", logins)
	}
	if len(*sleeps) != 1 {
		t.Errorf("expected exactly one backoff sleep, got %d", len(*sleeps))
	}
}

func TestTokenCachedUntilExpiry(t *testing.T) {
	var logins int32
	mux := http.NewServeMux()
	mux.Handle("/v1/login", loginHandler(&logins))
	mux.HandleFunc("/v1/inventory/", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(stockPayload("AB1234", 1))
	})

	c, _ := newTestClient(t, mux)

	now := time.Now()
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := c.GetStock(context.Background(), "AB1234"); err != nil {
			t.Fatal(err)
		}
	}
	if logins != 1 {
		t.Errorf("expected one login for cached token, got %d", logins)
	}

	// Advance past expiry; the next call must log in again.
	now = now.Add(2 * time.Hour)
	if _, err := c.GetStock(context.Background(), "AB1234"); err != nil {
		t.Fatal(err)
	}
	if logins != 2 {
		t.Errorf("expected re-login after expiry, got %d logins", logins)
	}
}
