package application

import (
	"context"
	"fmt"

	"ralawise-shopify-sync/internal/domain"
	"ralawise-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// StatsService aggregates the dashboard counters for one shop.
type StatsService struct {
	mappings ports.MappingRepository
	catalog  ports.CatalogClient
	sink     ports.SyncLogSink
	logger   zerolog.Logger
}

// NewStatsService creates a dashboard stats service.
func NewStatsService(mappings ports.MappingRepository, catalog ports.CatalogClient, sink ports.SyncLogSink, logger zerolog.Logger) *StatsService {
	return &StatsService{
		mappings: mappings,
		catalog:  catalog,
		sink:     sink,
		logger:   logger,
	}
}

// Stats returns product/collection counts from the storefront plus the
// mapped-SKU count and the error count over the recent sync log.
func (s *StatsService) Stats(ctx context.Context, shop, token string) (*domain.DashboardStats, error) {
	products, err := s.catalog.ProductCount(ctx, shop, token)
	if err != nil {
		return nil, fmt.Errorf("failed to count products for %s: %w", shop, err)
	}

	collections, err := s.catalog.CollectionCount(ctx, shop, token)
	if err != nil {
		return nil, fmt.Errorf("failed to count collections for %s: %w", shop, err)
	}

	mapped, err := s.mappings.CountByShop(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to count mappings for %s: %w", shop, err)
	}

	entries, err := s.sink.ReadRecent(ctx, shop, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync log for %s: %w", shop, err)
	}
	errorCount := 0
	for _, e := range entries {
		if e.Status == domain.StatusError {
			errorCount++
		}
	}

	return &domain.DashboardStats{
		Products:    products,
		Collections: collections,
		MappedSKUs:  mapped,
		SyncErrors:  errorCount,
	}, nil
}
