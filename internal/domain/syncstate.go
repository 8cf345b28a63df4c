package domain

import "time"

// SyncState is the last quantity successfully written to the storefront for a
// (shop, sku) pair. One logical row per pair, replaced on every successful
// write. It is only a comparison baseline; Ralawise stays the source of truth
// for current stock.
type SyncState struct {
	Shop        string    `json:"shop"`
	RalawiseSKU string    `json:"ralawise_sku"`
	Quantity    int       `json:"quantity"`
	SyncedAt    time.Time `json:"synced_at"`
}
