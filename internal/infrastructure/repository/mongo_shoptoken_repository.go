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

// MongoShopTokenRepository implements ShopTokenRepository using MongoDB
type MongoShopTokenRepository struct {
	collection *mongo.Collection
}

var _ ports.ShopTokenRepository = (*MongoShopTokenRepository)(nil)

// NewMongoShopTokenRepository creates a new MongoDB shop-token repository
func NewMongoShopTokenRepository(db *mongo.Database) *MongoShopTokenRepository {
	return &MongoShopTokenRepository{
		collection: db.Collection("store_tokens"),
	}
}

// Get retrieves the token for a shop. Returns nil when the shop is unknown.
func (r *MongoShopTokenRepository) Get(ctx context.Context, shop string) (*domain.ShopToken, error) {
	var doc entity.MongoShopTokenDoc
	filter := bson.M{"shop": shop}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop token: %w", err)
	}

	return doc.ToDomain(), nil
}

// Save saves or updates the token for a shop.
func (r *MongoShopTokenRepository) Save(ctx context.Context, token *domain.ShopToken) error {
	doc := entity.MongoShopTokenDocFromDomain(token)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"shop": token.Shop}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save shop token: %w", err)
	}

	return nil
}

// ListReadyForSync returns all shops flagged ready for the batch worker,
// ordered by token creation time.
func (r *MongoShopTokenRepository) ListReadyForSync(ctx context.Context) ([]*domain.ShopToken, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"readyForSync": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops ready for sync: %w", err)
	}
	defer cursor.Close(ctx)

	var tokens []*domain.ShopToken
	for cursor.Next(ctx) {
		var doc entity.MongoShopTokenDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode shop token: %w", err)
		}
		tokens = append(tokens, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return tokens, nil
}
