package ports

import (
	"context"
	"time"

	"ralawise-shopify-sync/internal/domain"
)

// SupplierClient queries current stock at the wholesale supplier.
type SupplierClient interface {
	// GetStock returns the supplier's stock record for a SKU. A nil quantity
	// in the result means the supplier has no record for the SKU.
	GetStock(ctx context.Context, sku string) (*domain.StockResult, error)
}

// StorefrontClient covers the three storefront inventory operations the
// orchestrator depends on. Implementations classify storefront failures into
// domain.NotFoundError / domain.RateLimitedError so the orchestrator's
// per-SKU branching is plain data-driven error inspection.
type StorefrontClient interface {
	// ResolveLocation returns the shop's inventory location handle. Resolved
	// once per run and cached by the caller.
	ResolveLocation(ctx context.Context, shop, token string) (int64, error)
	// ResolveInventoryItem maps a variant to its inventory item handle.
	ResolveInventoryItem(ctx context.Context, shop, token string, variantID int64) (int64, error)
	// SetInventoryLevel writes the available quantity for an inventory item
	// at a location.
	SetInventoryLevel(ctx context.Context, shop, token string, inventoryItemID, locationID int64, quantity int) error
}

// CatalogClient covers the storefront product-catalog reads used by the
// mapping refresher and the dashboard.
type CatalogClient interface {
	// ListAllVariants pages through the whole product catalog and returns
	// every variant.
	ListAllVariants(ctx context.Context, shop, token string) ([]domain.CatalogVariant, error)
	ProductCount(ctx context.Context, shop, token string) (int, error)
	CollectionCount(ctx context.Context, shop, token string) (int, error)
}

// RateLimitSignal exposes the process-wide "recently rate limited" flag the
// orchestrator consults for its global cooldown.
type RateLimitSignal interface {
	RecentlyLimited(window time.Duration) bool
}
