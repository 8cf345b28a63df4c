package logsink

import (
	"context"
	"encoding/json"
	"fmt"

	"ralawise-shopify-sync/internal/domain"
	"ralawise-shopify-sync/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisSink persists sync outcomes in a capped Redis list (newest first) and
// mirrors them into an in-memory live buffer. Entries are append-only: the
// list is only pushed and trimmed, never rewritten.
type RedisSink struct {
	rdb    redis.Cmdable
	cap    int64
	live   liveBuffer
	logger zerolog.Logger
}

var _ ports.SyncLogSink = (*RedisSink)(nil)

// NewRedisSink creates a log sink keeping the most recent cap entries per
// shop.
func NewRedisSink(rdb redis.Cmdable, cap int, logger zerolog.Logger) *RedisSink {
	return &RedisSink{
		rdb:    rdb,
		cap:    int64(cap),
		logger: logger,
	}
}

func syncLogKey(shop string) string {
	return "sync_logs:" + shop
}

// Reset clears the live buffer. Called once at run start.
func (s *RedisSink) Reset() {
	s.live.reset()
}

// Record appends the entry to the live buffer and the persisted list.
func (s *RedisSink) Record(ctx context.Context, shop string, entry *domain.LogEntry) error {
	s.live.append(entry.Line())

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode log entry: %w", err)
	}

	key := syncLogKey(shop)
	if err := s.rdb.LPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	if err := s.rdb.LTrim(ctx, key, 0, s.cap-1).Err(); err != nil {
		return fmt.Errorf("failed to trim log: %w", err)
	}

	return nil
}

// ReadRecent returns up to limit most recent entries, newest first.
func (s *RedisSink) ReadRecent(ctx context.Context, shop string, limit int) ([]*domain.LogEntry, error) {
	if limit <= 0 || int64(limit) > s.cap {
		limit = int(s.cap)
	}

	raw, err := s.rdb.LRange(ctx, syncLogKey(shop), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}

	entries := make([]*domain.LogEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.LogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			// A malformed entry should not hide the rest of the log.
			s.logger.Warn().Err(err).Str("shop", shop).Msg("skipping malformed log entry")
			continue
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

// Note appends a line to the live buffer only.
func (s *RedisSink) Note(line string) {
	s.live.append(line)
}

// Live returns a snapshot of the live buffer lines.
func (s *RedisSink) Live() []string {
	return s.live.snapshot()
}
