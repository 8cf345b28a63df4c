package entity

import (
	"time"

	"ralawise-shopify-sync/internal/domain"
)

// MongoMappingDoc represents a SKU mapping in MongoDB
type MongoMappingDoc struct {
	Shop        string    `bson:"shop"`
	RalawiseSKU string    `bson:"ralawiseSku"`
	VariantID   int64     `bson:"variantId"`
	ProductID   int64     `bson:"productId"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoMappingDoc) ToDomain() *domain.Mapping {
	return &domain.Mapping{
		Shop:        d.Shop,
		RalawiseSKU: d.RalawiseSKU,
		VariantID:   d.VariantID,
		ProductID:   d.ProductID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoMappingDocFromDomain converts a domain entity to a MongoDB document
func MongoMappingDocFromDomain(m *domain.Mapping) *MongoMappingDoc {
	return &MongoMappingDoc{
		Shop:        m.Shop,
		RalawiseSKU: m.RalawiseSKU,
		VariantID:   m.VariantID,
		ProductID:   m.ProductID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
