package domain

import (
	"fmt"
	"time"
)

// Sync outcome statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Messages attached to success entries.
const (
	MessageNoChange = "no change"
)

// LogEntry is one recorded sync outcome. Entries are append-only: once
// recorded they are never mutated.
type LogEntry struct {
	Time      time.Time `json:"time"`
	SKU       string    `json:"sku"`
	Status    string    `json:"status"`
	Quantity  *int      `json:"quantity,omitempty"`
	Error     string    `json:"error,omitempty"`
	VariantID int64     `json:"variantId,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Line renders the entry as a single human-readable log line for the live
// buffer.
func (e *LogEntry) Line() string {
	ts := e.Time.UTC().Format(time.RFC3339)
	switch {
	case e.Status == StatusError:
		return fmt.Sprintf("%s [error] sku=%s variant=%d: %s", ts, e.SKU, e.VariantID, e.Error)
	case e.Message != "":
		return fmt.Sprintf("%s [success] sku=%s variant=%d: %s", ts, e.SKU, e.VariantID, e.Message)
	case e.Quantity != nil:
		return fmt.Sprintf("%s [success] sku=%s variant=%d qty=%d", ts, e.SKU, e.VariantID, *e.Quantity)
	default:
		return fmt.Sprintf("%s [success] sku=%s variant=%d", ts, e.SKU, e.VariantID)
	}
}
