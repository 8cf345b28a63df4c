package ports

import (
	"context"

	"ralawise-shopify-sync/internal/domain"
)

// MappingRepository defines persistence for SKU→variant mappings.
type MappingRepository interface {
	// ListByShop returns all mappings for a shop ordered by creation time
	// ascending, or descending when reverse is set.
	ListByShop(ctx context.Context, shop string, reverse bool) ([]*domain.Mapping, error)
	// Upsert inserts or updates the mapping keyed on (shop, variant_id).
	Upsert(ctx context.Context, m *domain.Mapping) error
	// Delete removes the mapping for a variant. Used by the orchestrator's
	// self-healing path when the storefront reports the variant gone.
	Delete(ctx context.Context, shop string, variantID int64) error
	CountByShop(ctx context.Context, shop string) (int64, error)
}

// SyncStateRepository defines persistence for the per-SKU quantity baseline.
type SyncStateRepository interface {
	// LoadAll returns the baseline quantity per SKU for a shop.
	LoadAll(ctx context.Context, shop string) (map[string]int, error)
	// Save replaces the baseline for (shop, sku).
	Save(ctx context.Context, shop, sku string, quantity int) error
}

// ShopTokenRepository defines persistence for per-shop access tokens.
type ShopTokenRepository interface {
	Get(ctx context.Context, shop string) (*domain.ShopToken, error)
	Save(ctx context.Context, token *domain.ShopToken) error
	ListReadyForSync(ctx context.Context) ([]*domain.ShopToken, error)
}
