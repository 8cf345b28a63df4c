package logsink

import "sync"

// liveBufferCap bounds the in-memory live log; oldest lines are evicted.
const liveBufferCap = 200

// liveBuffer is a bounded in-process buffer of human-readable log lines for
// real-time observation of a running sync. Cleared at the start of each run.
type liveBuffer struct {
	mu    sync.Mutex
	lines []string
}

func (b *liveBuffer) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = b.lines[:0]
}

func (b *liveBuffer) append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.lines) >= liveBufferCap {
		b.lines = b.lines[1:]
	}
	b.lines = append(b.lines, line)
}

func (b *liveBuffer) snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}
