package application

import (
	"context"
	"fmt"
	"time"

	"ralawise-shopify-sync/internal/domain"
	"ralawise-shopify-sync/internal/infrastructure/observability"
	"ralawise-shopify-sync/internal/ports"

	"github.com/rs/zerolog"
)

// SyncOptions tunes one sync pass.
type SyncOptions struct {
	// Reverse walks the mappings newest-first, so alternating runs neither
	// starve nor perpetually prioritize newly added SKUs.
	Reverse bool
	// Force bypasses the unchanged-quantity skip, writing every SKU. Used
	// for periodic full reconciliation: the skip compares against the last
	// successful sync, not the live storefront value, so an out-of-band
	// storefront edit can otherwise be suppressed indefinitely.
	Force bool
}

// SyncConfig holds the pacing policy of the orchestrator.
type SyncConfig struct {
	// WriteDelay is the pause after each successful inventory write.
	WriteDelay time.Duration
	// RateLimitCooldown is the extra pause added after a successful write
	// while a rate-limit event is within RateLimitWindow.
	RateLimitCooldown time.Duration
	RateLimitWindow   time.Duration
}

// DefaultSyncConfig returns the standard pacing policy.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		WriteDelay:        1500 * time.Millisecond,
		RateLimitCooldown: 5 * time.Second,
		RateLimitWindow:   time.Minute,
	}
}

// SyncService drives the fetch→compare→write→log pipeline over a shop's SKU
// mappings. SKUs are processed strictly sequentially: both external APIs rate
// limit per shop, so parallelism would only grow the retry burden.
type SyncService struct {
	mappings   ports.MappingRepository
	states     ports.SyncStateRepository
	supplier   ports.SupplierClient
	storefront ports.StorefrontClient
	sink       ports.SyncLogSink
	limits     ports.RateLimitSignal
	metrics    *observability.SyncMetrics
	cfg        SyncConfig
	logger     zerolog.Logger

	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time
}

// NewSyncService creates the sync orchestrator.
func NewSyncService(
	mappings ports.MappingRepository,
	states ports.SyncStateRepository,
	supplier ports.SupplierClient,
	storefront ports.StorefrontClient,
	sink ports.SyncLogSink,
	limits ports.RateLimitSignal,
	metrics *observability.SyncMetrics,
	cfg SyncConfig,
	logger zerolog.Logger,
) *SyncService {
	return &SyncService{
		mappings:   mappings,
		states:     states,
		supplier:   supplier,
		storefront: storefront,
		sink:       sink,
		limits:     limits,
		metrics:    metrics,
		cfg:        cfg,
		logger:     logger,
		sleep:      sleepCtx,
		now:        time.Now,
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

// RunSync performs one full synchronization pass over all mappings for shop.
// It returns normally on completion regardless of individual SKU failures;
// only a run-level failure (mapping load, location resolution, baseline load)
// is returned as an error. All per-SKU status is observable via the log sink.
func (s *SyncService) RunSync(ctx context.Context, shop, token string, opts SyncOptions) error {
	start := s.now()
	logger := s.logger.With().Str("shop", shop).Logger()

	s.sink.Reset()
	logger.Info().Bool("reverse", opts.Reverse).Bool("force", opts.Force).Msg("sync started")

	mappings, err := s.mappings.ListByShop(ctx, shop, opts.Reverse)
	if err != nil {
		return fmt.Errorf("failed to load mappings for %s: %w", shop, err)
	}

	// Non-conforming SKUs never reach either API: stale rows must not
	// consume quota.
	valid := make([]*domain.Mapping, 0, len(mappings))
	for _, m := range mappings {
		if domain.IsRalawiseSKU(m.RalawiseSKU) {
			valid = append(valid, m)
		} else {
			logger.Warn().Str("sku", m.RalawiseSKU).Int64("variant_id", m.VariantID).Msg("skipping non-conforming SKU")
		}
	}

	// One location per run; re-resolving per SKU would double the write-path
	// call count.
	locationID, err := s.storefront.ResolveLocation(ctx, shop, token)
	if err != nil {
		return fmt.Errorf("failed to resolve location for %s: %w", shop, err)
	}

	baseline, err := s.states.LoadAll(ctx, shop)
	if err != nil {
		return fmt.Errorf("failed to load sync state for %s: %w", shop, err)
	}

	counts := map[string]int{}
	for _, m := range valid {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome := s.syncOne(ctx, shop, token, locationID, m, baseline, opts.Force, logger)
		counts[outcome]++
		s.metrics.Outcomes.WithLabelValues(outcome).Inc()

		if outcome == observability.OutcomeSuccess {
			s.sleep(ctx, s.cfg.WriteDelay)
			if s.limits.RecentlyLimited(s.cfg.RateLimitWindow) {
				logger.Warn().Msg("recent rate limit, adding cooldown")
				s.sleep(ctx, s.cfg.RateLimitCooldown)
			}
		}
	}

	elapsed := s.now().Sub(start)
	s.metrics.RunDuration.Observe(elapsed.Seconds())
	s.sink.Note(fmt.Sprintf("%s sync complete for %s: %d updated, %d unchanged, %d errors",
		s.now().UTC().Format(time.RFC3339), shop,
		counts[observability.OutcomeSuccess], counts[observability.OutcomeNoChange], counts[observability.OutcomeError]))

	logger.Info().
		Int("updated", counts[observability.OutcomeSuccess]).
		Int("unchanged", counts[observability.OutcomeNoChange]).
		Int("errors", counts[observability.OutcomeError]).
		Dur("elapsed", elapsed).
		Msg("sync complete")

	return nil
}

// syncOne runs the pipeline for a single mapping and returns the outcome
// label. Every failure is caught here: one bad SKU must never abort the
// shop's whole run.
func (s *SyncService) syncOne(
	ctx context.Context,
	shop, token string,
	locationID int64,
	m *domain.Mapping,
	baseline map[string]int,
	force bool,
	logger zerolog.Logger,
) string {
	stock, err := s.supplier.GetStock(ctx, m.RalawiseSKU)
	if err != nil {
		if _, ok := domain.AsRateLimited(err); ok {
			s.metrics.RateLimitHits.Inc()
		}
		logger.Error().Err(err).Str("sku", m.RalawiseSKU).Msg("supplier stock fetch failed")
		s.record(ctx, shop, &domain.LogEntry{
			SKU:       m.RalawiseSKU,
			Status:    domain.StatusError,
			Error:     fmt.Sprintf("supplier stock fetch failed: %v", err),
			VariantID: m.VariantID,
		}, logger)
		return observability.OutcomeError
	}

	if stock.Quantity == nil {
		// A valid negative result: the supplier has no record for this SKU.
		// Logged for visibility but the mapping is left alone.
		logger.Warn().Str("sku", m.RalawiseSKU).Msg("no stock returned by supplier")
		s.record(ctx, shop, &domain.LogEntry{
			SKU:       m.RalawiseSKU,
			Status:    domain.StatusError,
			Error:     "no stock returned",
			VariantID: m.VariantID,
		}, logger)
		return observability.OutcomeError
	}

	quantity := *stock.Quantity
	if !force {
		if prev, ok := baseline[m.RalawiseSKU]; ok && prev == quantity {
			s.record(ctx, shop, &domain.LogEntry{
				SKU:       m.RalawiseSKU,
				Status:    domain.StatusSuccess,
				Quantity:  &quantity,
				VariantID: m.VariantID,
				Message:   domain.MessageNoChange,
			}, logger)
			return observability.OutcomeNoChange
		}
	}

	inventoryItemID, err := s.storefront.ResolveInventoryItem(ctx, shop, token, m.VariantID)
	if err != nil {
		return s.storefrontFailure(ctx, shop, m, err, logger)
	}

	if err := s.storefront.SetInventoryLevel(ctx, shop, token, inventoryItemID, locationID, quantity); err != nil {
		return s.storefrontFailure(ctx, shop, m, err, logger)
	}

	if err := s.states.Save(ctx, shop, m.RalawiseSKU, quantity); err != nil {
		// The storefront write went through; a stale baseline only means the
		// next run repeats the write.
		logger.Error().Err(err).Str("sku", m.RalawiseSKU).Msg("failed to persist baseline")
		s.record(ctx, shop, &domain.LogEntry{
			SKU:       m.RalawiseSKU,
			Status:    domain.StatusError,
			Error:     fmt.Sprintf("failed to persist baseline: %v", err),
			VariantID: m.VariantID,
		}, logger)
		return observability.OutcomeError
	}
	baseline[m.RalawiseSKU] = quantity

	logger.Info().Str("sku", m.RalawiseSKU).Int("quantity", quantity).Int64("variant_id", m.VariantID).Msg("stock updated")
	s.record(ctx, shop, &domain.LogEntry{
		SKU:       m.RalawiseSKU,
		Status:    domain.StatusSuccess,
		Quantity:  &quantity,
		VariantID: m.VariantID,
	}, logger)
	return observability.OutcomeSuccess
}

// storefrontFailure classifies a failed storefront lookup or write. A
// not-found means the variant is gone: the mapping is stale and is deleted so
// it stops consuming quota on every run. Not-found is never retried.
func (s *SyncService) storefrontFailure(ctx context.Context, shop string, m *domain.Mapping, err error, logger zerolog.Logger) string {
	switch {
	case domain.IsNotFound(err):
		logger.Warn().Str("sku", m.RalawiseSKU).Int64("variant_id", m.VariantID).Msg("variant gone, deleting stale mapping")
		if delErr := s.mappings.Delete(ctx, shop, m.VariantID); delErr != nil {
			logger.Error().Err(delErr).Int64("variant_id", m.VariantID).Msg("failed to delete stale mapping")
		} else {
			s.metrics.MappingDeletions.Inc()
		}
		s.record(ctx, shop, &domain.LogEntry{
			SKU:       m.RalawiseSKU,
			Status:    domain.StatusError,
			Error:     fmt.Sprintf("variant not found, mapping deleted: %v", err),
			VariantID: m.VariantID,
		}, logger)
	default:
		if _, ok := domain.AsRateLimited(err); ok {
			s.metrics.RateLimitHits.Inc()
		}
		logger.Error().Err(err).Str("sku", m.RalawiseSKU).Msg("storefront update failed")
		s.record(ctx, shop, &domain.LogEntry{
			SKU:       m.RalawiseSKU,
			Status:    domain.StatusError,
			Error:     err.Error(),
			VariantID: m.VariantID,
		}, logger)
	}
	return observability.OutcomeError
}

func (s *SyncService) record(ctx context.Context, shop string, entry *domain.LogEntry, logger zerolog.Logger) {
	entry.Time = s.now()
	if err := s.sink.Record(ctx, shop, entry); err != nil {
		logger.Warn().Err(err).Msg("failed to record sync log entry")
	}
}
