package entity

import (
	"time"

	"ralawise-shopify-sync/internal/domain"
)

// MongoShopTokenDoc represents a stored shop access token in MongoDB
type MongoShopTokenDoc struct {
	Shop         string    `bson:"shop"`
	AccessToken  string    `bson:"accessToken"`
	ReadyForSync bool      `bson:"readyForSync"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoShopTokenDoc) ToDomain() *domain.ShopToken {
	return &domain.ShopToken{
		Shop:         d.Shop,
		AccessToken:  d.AccessToken,
		ReadyForSync: d.ReadyForSync,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoShopTokenDocFromDomain converts a domain entity to a MongoDB document
func MongoShopTokenDocFromDomain(t *domain.ShopToken) *MongoShopTokenDoc {
	return &MongoShopTokenDoc{
		Shop:         t.Shop,
		AccessToken:  t.AccessToken,
		ReadyForSync: t.ReadyForSync,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
