package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings. Values come from the environment with
// defaults applied; a .env file is loaded by the entrypoints in development.
type Config struct {
	Port string

	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RalawiseBaseURL  string
	RalawiseUser     string
	RalawisePassword string

	ShopifyAPIKey     string
	ShopifyAPISecret  string
	ShopifyAPIVersion string

	// CallTimeout bounds each outbound HTTP call; RunTimeout bounds one full
	// sync pass for a shop. Both are explicit rather than relying on HTTP
	// client defaults.
	CallTimeout time.Duration
	RunTimeout  time.Duration

	// WriteDelay is the pacing pause after each successful inventory write.
	// RateLimitCooldown is the extra pause added while the rate-limit tracker
	// reports a recent 429.
	WriteDelay        time.Duration
	RateLimitCooldown time.Duration

	// Worker settings.
	InterShopPause time.Duration
	CycleInterval  time.Duration
	// ForceEvery makes every Nth worker cycle a forced (non-skipping)
	// reconciliation pass. Zero disables forced passes.
	ForceEvery int

	SyncLogCap int
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:              "8080",
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "ralawise_sync",
		RedisAddr:         "localhost:6379",
		RalawiseBaseURL:   "https://api.ralawise.com",
		ShopifyAPIVersion: "2024-10",
		CallTimeout:       15 * time.Second,
		RunTimeout:        30 * time.Minute,
		WriteDelay:        1500 * time.Millisecond,
		RateLimitCooldown: 5 * time.Second,
		InterShopPause:    2 * time.Second,
		CycleInterval:     10 * time.Minute,
		ForceEvery:        0,
		SyncLogCap:        50,
	}
}

// Load returns a Config using the hierarchy: defaults < ENV.
func Load() (*Config, error) {
	cfg := Defaults()

	setString(&cfg.Port, "PORT")
	setString(&cfg.MongoURI, "MONGODB_URI")
	setString(&cfg.MongoDatabase, "MONGODB_DATABASE")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setInt(&cfg.RedisDB, "REDIS_DB")
	setString(&cfg.RalawiseBaseURL, "RALAWISE_BASE_URL")
	setString(&cfg.RalawiseUser, "RALAWISE_USER")
	setString(&cfg.RalawisePassword, "RALAWISE_PASSWORD")
	setString(&cfg.ShopifyAPIKey, "SHOPIFY_API_KEY")
	setString(&cfg.ShopifyAPISecret, "SHOPIFY_API_SECRET")
	setString(&cfg.ShopifyAPIVersion, "SHOPIFY_API_VERSION")
	setDuration(&cfg.CallTimeout, "SYNC_CALL_TIMEOUT")
	setDuration(&cfg.RunTimeout, "SYNC_RUN_TIMEOUT")
	setDuration(&cfg.WriteDelay, "SYNC_WRITE_DELAY")
	setDuration(&cfg.RateLimitCooldown, "SYNC_RATE_LIMIT_COOLDOWN")
	setDuration(&cfg.InterShopPause, "WORKER_INTER_SHOP_PAUSE")
	setDuration(&cfg.CycleInterval, "WORKER_CYCLE_INTERVAL")
	setInt(&cfg.ForceEvery, "WORKER_FORCE_EVERY")
	setInt(&cfg.SyncLogCap, "SYNC_LOG_CAP")

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.RalawiseUser == "" || cfg.RalawisePassword == "" {
		return fmt.Errorf("RALAWISE_USER and RALAWISE_PASSWORD are required")
	}
	if cfg.CallTimeout <= 0 {
		return fmt.Errorf("SYNC_CALL_TIMEOUT must be positive")
	}
	if cfg.RunTimeout <= 0 {
		return fmt.Errorf("SYNC_RUN_TIMEOUT must be positive")
	}
	if cfg.SyncLogCap <= 0 {
		return fmt.Errorf("SYNC_LOG_CAP must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
