package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"ralawise-shopify-sync/internal/application"
	"ralawise-shopify-sync/internal/config"
	"ralawise-shopify-sync/internal/domain"
	"ralawise-shopify-sync/internal/infrastructure/logsink"
	"ralawise-shopify-sync/internal/infrastructure/observability"
	"ralawise-shopify-sync/internal/infrastructure/ralawise"
	"ralawise-shopify-sync/internal/infrastructure/repository"
	shopifyinfra "ralawise-shopify-sync/internal/infrastructure/shopify"
	"ralawise-shopify-sync/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

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

	// Initialize metrics
	registry := prometheus.NewRegistry()
	metrics := observability.NewSyncMetrics(registry)

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

	// Initialize application services
	syncConfig := application.DefaultSyncConfig()
	syncConfig.WriteDelay = cfg.WriteDelay
	syncConfig.RateLimitCooldown = cfg.RateLimitCooldown

	syncService := application.NewSyncService(
		mappingRepo, stateRepo, ralawiseClient, shopifyClient,
		sink, tracker, metrics, syncConfig, logger,
	)
	mappingService := application.NewMappingService(mappingRepo, shopifyClient, logger)
	statsService := application.NewStatsService(mappingRepo, shopifyClient, sink, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Post("/sync", syncHandler(syncService, tokenRepo, sink, cfg.RunTimeout, logger))
	r.Post("/refresh-mappings", refreshMappingsHandler(mappingService, tokenRepo, logger))
	r.Get("/sync-logs", syncLogsHandler(sink, cfg.SyncLogCap, logger))
	r.Get("/sync-live", syncLiveHandler(sink))
	r.Get("/dashboard-stats", dashboardStatsHandler(statsService, tokenRepo, logger))

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requireShopToken resolves the shop query parameter to its stored access
// token. Writes the error response and returns nil when the shop is missing,
// unknown, or not enabled for sync.
func requireShopToken(tokens ports.ShopTokenRepository, w http.ResponseWriter, r *http.Request, logger zerolog.Logger) *domain.ShopToken {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		http.Error(w, "shop parameter is required", http.StatusBadRequest)
		return nil
	}

	token, err := tokens.Get(r.Context(), shop)
	if err != nil {
		logger.Error().Err(err).Str("shop", shop).Msg("Failed to load shop token")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	if token == nil || !token.ReadyForSync {
		http.Error(w, "shop is not enabled for sync", http.StatusForbidden)
		return nil
	}
	return token
}

// syncHandler runs one synchronous sync pass for a shop.
func syncHandler(syncService *application.SyncService, tokens ports.ShopTokenRepository, sink ports.SyncLogSink, runTimeout time.Duration, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := requireShopToken(tokens, w, r, logger)
		if token == nil {
			return
		}

		opts := application.SyncOptions{
			Reverse: r.URL.Query().Get("reverse") == "true",
			Force:   r.URL.Query().Get("force") == "true",
		}

		ctx, cancel := context.WithTimeout(r.Context(), runTimeout)
		defer cancel()

		if err := syncService.RunSync(ctx, token.Shop, token.AccessToken, opts); err != nil {
			logger.Error().Err(err).Str("shop", token.Shop).Msg("Sync run failed")
			http.Error(w, "sync failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "completed",
			"shop":   token.Shop,
			"log":    sink.Live(),
		})
	}
}

// refreshMappingsHandler rebuilds the SKU mapping table from the catalog.
func refreshMappingsHandler(mappingService *application.MappingService, tokens ports.ShopTokenRepository, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := requireShopToken(tokens, w, r, logger)
		if token == nil {
			return
		}

		mapped, err := mappingService.Refresh(r.Context(), token.Shop, token.AccessToken)
		if err != nil {
			logger.Error().Err(err).Str("shop", token.Shop).Msg("Mapping refresh failed")
			http.Error(w, "refresh failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "completed",
			"shop":   token.Shop,
			"mapped": mapped,
		})
	}
}

// syncLogsHandler returns the persisted sync log, newest first.
func syncLogsHandler(sink ports.SyncLogSink, defaultLimit int, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if shop == "" {
			http.Error(w, "shop parameter is required", http.StatusBadRequest)
			return
		}

		limit := defaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		entries, err := sink.ReadRecent(r.Context(), shop, limit)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to read sync log")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, entries)
	}
}

// syncLiveHandler returns the in-memory live buffer of the current or most
// recent run.
func syncLiveHandler(sink ports.SyncLogSink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"lines": sink.Live()})
	}
}

// dashboardStatsHandler returns the dashboard counters for a shop.
func dashboardStatsHandler(statsService *application.StatsService, tokens ports.ShopTokenRepository, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := requireShopToken(tokens, w, r, logger)
		if token == nil {
			return
		}

		stats, err := statsService.Stats(r.Context(), token.Shop, token.AccessToken)
		if err != nil {
			logger.Error().Err(err).Str("shop", token.Shop).Msg("Failed to aggregate dashboard stats")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}
