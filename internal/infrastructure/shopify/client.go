package shopify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ralawise-shopify-sync/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// catalogPageThrottle is the pause between product pages during a catalog
// walk, keeping the refresh well inside the REST bucket.
const catalogPageThrottle = 500 * time.Millisecond

// Client adapts the Shopify admin API to the storefront and catalog ports.
// Every call is wrapped in the rate-limit retry and classified into the
// domain error taxonomy.
type Client struct {
	app         goshopify.App
	version     string
	httpClient  *http.Client
	tracker     *Tracker
	retryConfig RetryConfig
	sleep       sleepFunc
	logger      zerolog.Logger
}

// NewClient creates a Shopify client adapter.
func NewClient(apiKey, apiSecret, version string, callTimeout time.Duration, tracker *Tracker, retryConfig RetryConfig, logger zerolog.Logger) *Client {
	return &Client{
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		version:     version,
		httpClient:  &http.Client{Timeout: callTimeout},
		tracker:     tracker,
		retryConfig: retryConfig,
		sleep:       sleepCtx,
		logger:      logger,
	}
}

// Tracker returns the shared rate-limit tracker, for the orchestrator's
// cooldown signal.
func (c *Client) Tracker() *Tracker {
	return c.tracker
}

// api is a helper to create a goshopify client for one shop.
func (c *Client) api(shop, token string) (*goshopify.Client, error) {
	client, err := goshopify.NewClient(c.app, shop, token,
		goshopify.WithVersion(c.version),
		goshopify.WithHTTPClient(c.httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// ResolveLocation returns the shop's first inventory location.
func (c *Client) ResolveLocation(ctx context.Context, shop, token string) (int64, error) {
	api, err := c.api(shop, token)
	if err != nil {
		return 0, err
	}

	var locationID int64
	err = withRetry(ctx, c.tracker, c.sleep, c.retryConfig, func() error {
		locations, err := api.Location.List(ctx, nil)
		if err != nil {
			return classifyError(err, "location", 0)
		}
		if len(locations) == 0 {
			return fmt.Errorf("shop %s has no inventory locations", shop)
		}
		locationID = int64(locations[0].Id)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to resolve location for %s: %w", shop, err)
	}
	return locationID, nil
}

// ResolveInventoryItem maps a variant to its inventory item handle. A gone
// variant surfaces as domain.NotFoundError.
func (c *Client) ResolveInventoryItem(ctx context.Context, shop, token string, variantID int64) (int64, error) {
	api, err := c.api(shop, token)
	if err != nil {
		return 0, err
	}

	var inventoryItemID int64
	err = withRetry(ctx, c.tracker, c.sleep, c.retryConfig, func() error {
		variant, err := api.Variant.Get(ctx, uint64(variantID), nil)
		if err != nil {
			return classifyError(err, "variant", variantID)
		}
		inventoryItemID = int64(variant.InventoryItemId)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inventoryItemID, nil
}

// SetInventoryLevel writes the available quantity for an inventory item at a
// location.
func (c *Client) SetInventoryLevel(ctx context.Context, shop, token string, inventoryItemID, locationID int64, quantity int) error {
	api, err := c.api(shop, token)
	if err != nil {
		return err
	}

	return withRetry(ctx, c.tracker, c.sleep, c.retryConfig, func() error {
		_, err := api.InventoryLevel.Set(ctx, goshopify.InventoryLevel{
			InventoryItemId: uint64(inventoryItemID),
			LocationId:      uint64(locationID),
			Available:       quantity,
		})
		if err != nil {
			return classifyError(err, "inventory item", inventoryItemID)
		}
		return nil
	})
}

// ListAllVariants pages through the whole product catalog and returns every
// variant with its SKU.
func (c *Client) ListAllVariants(ctx context.Context, shop, token string) ([]domain.CatalogVariant, error) {
	api, err := c.api(shop, token)
	if err != nil {
		return nil, err
	}

	var variants []domain.CatalogVariant
	options := interface{}(&goshopify.ListOptions{Limit: 250, Fields: "id,title,variants"})
	page := 1

	for {
		var products []goshopify.Product
		var pagination *goshopify.Pagination

		err := withRetry(ctx, c.tracker, c.sleep, c.retryConfig, func() error {
			var err error
			products, pagination, err = api.Product.ListWithPagination(ctx, options)
			return classifyError(err, "product", 0)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list products for %s: %w", shop, err)
		}

		for _, product := range products {
			for _, variant := range product.Variants {
				variants = append(variants, domain.CatalogVariant{
					ProductID: int64(product.Id),
					VariantID: int64(variant.Id),
					SKU:       variant.Sku,
				})
			}
		}

		c.logger.Debug().
			Str("shop", shop).
			Int("page", page).
			Int("products", len(products)).
			Msg("fetched product page")

		if pagination == nil || pagination.NextPageOptions == nil {
			break
		}
		options = pagination.NextPageOptions
		page++
		c.sleep(ctx, catalogPageThrottle)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	return variants, nil
}

// ProductCount returns the shop's total product count.
func (c *Client) ProductCount(ctx context.Context, shop, token string) (int, error) {
	api, err := c.api(shop, token)
	if err != nil {
		return 0, err
	}

	var count int
	err = withRetry(ctx, c.tracker, c.sleep, c.retryConfig, func() error {
		var err error
		count, err = api.Product.Count(ctx, nil)
		return classifyError(err, "product", 0)
	})
	return count, err
}

// CollectionCount returns the combined custom and smart collection count.
func (c *Client) CollectionCount(ctx context.Context, shop, token string) (int, error) {
	api, err := c.api(shop, token)
	if err != nil {
		return 0, err
	}

	var custom, smart int
	err = withRetry(ctx, c.tracker, c.sleep, c.retryConfig, func() error {
		var err error
		custom, err = api.CustomCollection.Count(ctx, nil)
		return classifyError(err, "custom collection", 0)
	})
	if err != nil {
		return 0, err
	}
	err = withRetry(ctx, c.tracker, c.sleep, c.retryConfig, func() error {
		var err error
		smart, err = api.SmartCollection.Count(ctx, nil)
		return classifyError(err, "smart collection", 0)
	})
	if err != nil {
		return 0, err
	}
	return custom + smart, nil
}
