package entity

import (
	"time"

	"ralawise-shopify-sync/internal/domain"
)

// MongoSyncStateDoc represents a per-SKU quantity baseline in MongoDB
type MongoSyncStateDoc struct {
	Shop        string    `bson:"shop"`
	RalawiseSKU string    `bson:"ralawiseSku"`
	Quantity    int       `bson:"quantity"`
	SyncedAt    time.Time `bson:"syncedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoSyncStateDoc) ToDomain() *domain.SyncState {
	return &domain.SyncState{
		Shop:        d.Shop,
		RalawiseSKU: d.RalawiseSKU,
		Quantity:    d.Quantity,
		SyncedAt:    d.SyncedAt,
	}
}
