package shopify

import (
	"errors"
	"net/http"
	"time"

	"ralawise-shopify-sync/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// classifyError maps go-shopify errors onto the domain error taxonomy so the
// orchestrator can branch on them without knowing the transport. resource and
// id name the entity a 404 refers to.
func classifyError(err error, resource string, id int64) error {
	if err == nil {
		return nil
	}

	var rateLimitErr goshopify.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &domain.RateLimitedError{
			RetryAfter: time.Duration(rateLimitErr.RetryAfter) * time.Second,
		}
	}

	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.GetStatus() {
		case http.StatusNotFound:
			return &domain.NotFoundError{Resource: resource, ID: id}
		case http.StatusTooManyRequests:
			return &domain.RateLimitedError{}
		}
	}

	return err
}
