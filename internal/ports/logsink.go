package ports

import (
	"context"

	"ralawise-shopify-sync/internal/domain"
)

// SyncLogSink records sync outcomes. Entries go to a persisted capped list
// (most recent N retained, newest first) and to an in-memory live buffer that
// is cleared at the start of each run.
type SyncLogSink interface {
	// Reset clears the live buffer. Called once at run start.
	Reset()
	// Record appends the entry to the live buffer and the persisted list.
	Record(ctx context.Context, shop string, entry *domain.LogEntry) error
	// ReadRecent returns up to limit most recent persisted entries.
	ReadRecent(ctx context.Context, shop string, limit int) ([]*domain.LogEntry, error)
	// Note appends a line to the live buffer only, e.g. the run-completion
	// marker. Notes are not persisted.
	Note(line string)
	// Live returns a snapshot of the live buffer lines.
	Live() []string
}
