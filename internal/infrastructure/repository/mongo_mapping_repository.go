package repository

import (
	"context"
	"fmt"
	"time"

	"ralawise-shopify-sync/internal/domain"
	"ralawise-shopify-sync/internal/infrastructure/repository/entity"
	"ralawise-shopify-sync/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMappingRepository implements MappingRepository using MongoDB
type MongoMappingRepository struct {
	collection *mongo.Collection
}

var _ ports.MappingRepository = (*MongoMappingRepository)(nil)

// NewMongoMappingRepository creates a new MongoDB mapping repository
func NewMongoMappingRepository(db *mongo.Database) *MongoMappingRepository {
	return &MongoMappingRepository{
		collection: db.Collection("store_skus"),
	}
}

// EnsureIndexes creates the unique (shop, variantId) index. Called once at
// startup.
func (r *MongoMappingRepository) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "shop", Value: 1}, {Key: "variantId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := r.collection.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		return fmt.Errorf("failed to create mapping index: %w", err)
	}
	return nil
}

// ListByShop returns all mappings for a shop ordered by creation time,
// descending when reverse is set.
func (r *MongoMappingRepository) ListByShop(ctx context.Context, shop string, reverse bool) ([]*domain.Mapping, error) {
	order := 1
	if reverse {
		order = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: order}})

	cursor, err := r.collection.Find(ctx, bson.M{"shop": shop}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	defer cursor.Close(ctx)

	var mappings []*domain.Mapping
	for cursor.Next(ctx) {
		var doc entity.MongoMappingDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode mapping: %w", err)
		}
		mappings = append(mappings, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return mappings, nil
}

// Upsert inserts or updates the mapping keyed on (shop, variantId).
func (r *MongoMappingRepository) Upsert(ctx context.Context, m *domain.Mapping) error {
	now := time.Now()
	filter := bson.M{"shop": m.Shop, "variantId": m.VariantID}
	update := bson.M{
		"$set": bson.M{
			"ralawiseSku": m.RalawiseSKU,
			"productId":   m.ProductID,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"shop":      m.Shop,
			"variantId": m.VariantID,
			"createdAt": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert mapping: %w", err)
	}

	return nil
}

// Delete removes the mapping for a variant.
func (r *MongoMappingRepository) Delete(ctx context.Context, shop string, variantID int64) error {
	filter := bson.M{"shop": shop, "variantId": variantID}

	_, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}

	return nil
}

// CountByShop returns the number of mappings for a shop.
func (r *MongoMappingRepository) CountByShop(ctx context.Context, shop string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"shop": shop})
	if err != nil {
		return 0, fmt.Errorf("failed to count mappings: %w", err)
	}
	return count, nil
}
