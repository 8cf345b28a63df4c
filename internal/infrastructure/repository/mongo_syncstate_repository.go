package repository

import (
	"context"
	"fmt"
	"time"

	"ralawise-shopify-sync/internal/infrastructure/repository/entity"
	"ralawise-shopify-sync/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSyncStateRepository implements SyncStateRepository using MongoDB
type MongoSyncStateRepository struct {
	collection *mongo.Collection
}

var _ ports.SyncStateRepository = (*MongoSyncStateRepository)(nil)

// NewMongoSyncStateRepository creates a new MongoDB sync-state repository
func NewMongoSyncStateRepository(db *mongo.Database) *MongoSyncStateRepository {
	return &MongoSyncStateRepository{
		collection: db.Collection("sync_state"),
	}
}

// LoadAll returns the baseline quantity per SKU for a shop.
func (r *MongoSyncStateRepository) LoadAll(ctx context.Context, shop string) (map[string]int, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"shop": shop})
	if err != nil {
		return nil, fmt.Errorf("failed to load sync state: %w", err)
	}
	defer cursor.Close(ctx)

	baseline := make(map[string]int)
	for cursor.Next(ctx) {
		var doc entity.MongoSyncStateDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode sync state: %w", err)
		}
		baseline[doc.RalawiseSKU] = doc.Quantity
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return baseline, nil
}

// Save replaces the baseline for (shop, sku).
func (r *MongoSyncStateRepository) Save(ctx context.Context, shop, sku string, quantity int) error {
	filter := bson.M{"shop": shop, "ralawiseSku": sku}
	update := bson.M{
		"$set": bson.M{
			"quantity": quantity,
			"syncedAt": time.Now(),
		},
		"$setOnInsert": bson.M{
			"shop":        shop,
			"ralawiseSku": sku,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save sync state: %w", err)
	}

	return nil
}
