package application

import (
	"context"
	"fmt"
	"strings"

	"ralawise-shopify-sync/internal/domain"
	"ralawise-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// MappingService rebuilds the SKU→variant mapping table from the storefront
// catalog. A variant is mapped when its storefront SKU field conforms to the
// Ralawise naming convention.
type MappingService struct {
	mappings ports.MappingRepository
	catalog  ports.CatalogClient
	logger   zerolog.Logger
}

// NewMappingService creates a mapping refresher.
func NewMappingService(mappings ports.MappingRepository, catalog ports.CatalogClient, logger zerolog.Logger) *MappingService {
	return &MappingService{
		mappings: mappings,
		catalog:  catalog,
		logger:   logger,
	}
}

// Refresh pages the whole catalog for shop and upserts a mapping for every
// Ralawise-format variant. Returns the number of rows upserted. Individual
// upsert failures are logged and skipped; only the catalog walk itself is
// fatal.
func (s *MappingService) Refresh(ctx context.Context, shop, token string) (int, error) {
	variants, err := s.catalog.ListAllVariants(ctx, shop, token)
	if err != nil {
		return 0, fmt.Errorf("failed to walk catalog for %s: %w", shop, err)
	}

	upserted := 0
	for _, v := range variants {
		sku := strings.TrimSpace(v.SKU)
		if sku == "" || !domain.IsRalawiseSKU(sku) {
			continue
		}

		err := s.mappings.Upsert(ctx, &domain.Mapping{
			Shop:        shop,
			RalawiseSKU: sku,
			VariantID:   v.VariantID,
			ProductID:   v.ProductID,
		})
		if err != nil {
			s.logger.Error().Err(err).Str("shop", shop).Int64("variant_id", v.VariantID).Msg("mapping upsert failed")
			continue
		}
		upserted++
	}

	s.logger.Info().
		Str("shop", shop).
		Int("variants", len(variants)).
		Int("mapped", upserted).
		Msg("mapping refresh complete")

	return upserted, nil
}
