package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ralawise-shopify-sync/internal/application"
	"ralawise-shopify-sync/internal/config"
	"ralawise-shopify-sync/internal/infrastructure/logsink"
	"ralawise-shopify-sync/internal/infrastructure/observability"
	"ralawise-shopify-sync/internal/infrastructure/ralawise"
	"ralawise-shopify-sync/internal/infrastructure/repository"
	shopifyinfra "ralawise-shopify-sync/internal/infrastructure/shopify"
	"ralawise-shopify-sync/internal/ports"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// worker runs the periodic sync cycle over every shop enabled for sync.
type worker struct {
	syncService    *application.SyncService
	mappingService *application.MappingService
	tokens         ports.ShopTokenRepository
	cfg            *config.Config
	logger         zerolog.Logger
}

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)

	// Connect to Redis (capped sync log)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	// Initialize repositories
	mappingRepo := repository.NewMongoMappingRepository(db)
	stateRepo := repository.NewMongoSyncStateRepository(db)
	tokenRepo := repository.NewMongoShopTokenRepository(db)
	if err := mappingRepo.EnsureIndexes(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create mapping indexes")
	}

	// Initialize API clients
	tracker := shopifyinfra.NewTracker()
	shopifyClient := shopifyinfra.NewClient(
		cfg.ShopifyAPIKey,
		cfg.ShopifyAPISecret,
		cfg.ShopifyAPIVersion,
		cfg.CallTimeout,
		tracker,
		shopifyinfra.DefaultRetryConfig(),
		logger,
	)
	ralawiseClient := ralawise.NewClient(
		cfg.RalawiseBaseURL,
		cfg.RalawiseUser,
		cfg.RalawisePassword,
		cfg.CallTimeout,
		logger,
	)

	sink := logsink.NewRedisSink(rdb, cfg.SyncLogCap, logger)
	metrics := observability.NewSyncMetrics(prometheus.NewRegistry())

	syncConfig := application.DefaultSyncConfig()
	syncConfig.WriteDelay = cfg.WriteDelay
	syncConfig.RateLimitCooldown = cfg.RateLimitCooldown

	w := &worker{
		syncService: application.NewSyncService(
			mappingRepo, stateRepo, ralawiseClient, shopifyClient,
			sink, tracker, metrics, syncConfig, logger,
		),
		mappingService: application.NewMappingService(mappingRepo, shopifyClient, logger),
		tokens:         tokenRepo,
		cfg:            cfg,
		logger:         logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Dur("cycle_interval", cfg.CycleInterval).
		Int("force_every", cfg.ForceEvery).
		Msg("Starting sync worker")

	w.run(ctx)
	logger.Info().Msg("Sync worker stopped")
}

// run loops sync cycles until the context is cancelled. Cycles alternate walk
// direction so long mapping lists get covered from both ends, and every Nth
// cycle is a forced reconciliation pass when configured.
func (w *worker) run(ctx context.Context) {
	cycle := 0
	for {
		cycle++
		opts := application.SyncOptions{
			Reverse: cycle%2 == 0,
			Force:   w.cfg.ForceEvery > 0 && cycle%w.cfg.ForceEvery == 0,
		}
		w.runCycle(ctx, cycle, opts)

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.cfg.CycleInterval):
		}
	}
}

// runCycle refreshes mappings and syncs every ready shop in sequence. A
// failure in one shop never blocks the rest of the cycle.
func (w *worker) runCycle(ctx context.Context, cycle int, opts application.SyncOptions) {
	logger := w.logger.With().Int("cycle", cycle).Logger()

	shops, err := w.tokens.ListReadyForSync(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list shops, skipping cycle")
		return
	}
	if len(shops) == 0 {
		logger.Info().Msg("No shops ready for sync")
		return
	}

	logger.Info().
		Int("shops", len(shops)).
		Bool("reverse", opts.Reverse).
		Bool("force", opts.Force).
		Msg("Cycle started")

	for i, shop := range shops {
		if ctx.Err() != nil {
			return
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.cfg.InterShopPause):
			}
		}
		w.syncShop(ctx, shop.Shop, shop.AccessToken, opts, logger)
	}

	logger.Info().Msg("Cycle complete")
}

func (w *worker) syncShop(ctx context.Context, shop, token string, opts application.SyncOptions, logger zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, w.cfg.RunTimeout)
	defer cancel()

	if _, err := w.mappingService.Refresh(runCtx, shop, token); err != nil {
		// Sync still runs on the existing mappings.
		logger.Error().Err(err).Str("shop", shop).Msg("Mapping refresh failed")
	}

	if err := w.syncService.RunSync(runCtx, shop, token, opts); err != nil {
		logger.Error().Err(err).Str("shop", shop).Msg("Sync run failed")
	}
}
