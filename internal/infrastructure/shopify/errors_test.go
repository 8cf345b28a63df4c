package shopify

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"ralawise-shopify-sync/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

func TestClassifyNotFound(t *testing.T) {
	err := classifyError(goshopify.ResponseError{Status: 404, Message: "Not Found"}, "variant", 999)

	if !domain.IsNotFound(err) {
		t.Fatalf("expected not-found classification, got %v", err)
	}
	var nf *domain.NotFoundError
	errors.As(err, &nf)
	if nf.Resource != "variant" || nf.ID != 999 {
		t.Errorf("expected variant 999, got %s %d", nf.Resource, nf.ID)
	}
}

func TestClassifyRateLimitCarriesHint(t *testing.T) {
	err := classifyError(goshopify.RateLimitError{
		ResponseError: goshopify.ResponseError{Status: 429},
		RetryAfter:    4,
	}, "variant", 1)

	rl, ok := domain.AsRateLimited(err)
	if !ok {
		t.Fatalf("expected rate-limited classification, got %v", err)
	}
	if rl.RetryAfter != 4*time.Second {
		t.Errorf("expected 4s hint, got %v", rl.RetryAfter)
	}
}

func TestClassifyPassesThroughOtherErrors(t *testing.T) {
	boom := fmt.Errorf("connection reset")
	if got := classifyError(boom, "variant", 1); !errors.Is(got, boom) {
		t.Errorf("expected pass-through, got %v", got)
	}
	if got := classifyError(nil, "variant", 1); got != nil {
		t.Errorf("expected nil for nil, got %v", got)
	}
}

func TestClassifyWrapped404(t *testing.T) {
	wrapped := fmt.Errorf("failed to get variant: %w", goshopify.ResponseError{Status: 404})
	if !domain.IsNotFound(classifyError(wrapped, "variant", 5)) {
		t.Error("expected wrapped 404 to classify as not-found")
	}
}
