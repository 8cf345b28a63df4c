package application

import (
	"context"
	"errors"
	"testing"

	"ralawise-shopify-sync/internal/domain"

	"github.com/rs/zerolog"
)

type fakeCatalog struct {
	variants    []domain.CatalogVariant
	listErr     error
	products    int
	collections int
}

func (f *fakeCatalog) ListAllVariants(context.Context, string, string) ([]domain.CatalogVariant, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.variants, nil
}

func (f *fakeCatalog) ProductCount(context.Context, string, string) (int, error) {
	return f.products, nil
}

func (f *fakeCatalog) CollectionCount(context.Context, string, string) (int, error) {
	return f.collections, nil
}

func TestRefreshMapsOnlyRalawiseSKUs(t *testing.T) {
	catalog := &fakeCatalog{variants: []domain.CatalogVariant{
		{ProductID: 1, VariantID: 10, SKU: "JH001DPBK2XL"},
		{ProductID: 1, VariantID: 11, SKU: "  TS010WHTM  "},
		{ProductID: 2, VariantID: 20, SKU: "my-own-sku"},
		{ProductID: 2, VariantID: 21, SKU: ""},
		{ProductID: 3, VariantID: 30, SKU: "AB12"},
	}}
	mappings := &fakeMappings{}

	svc := NewMappingService(mappings, catalog, zerolog.Nop())
	n, err := svc.Refresh(context.Background(), "demo.myshopify.com", "tok")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 mappings, got %d", n)
	}

	bySKU := map[string]*domain.Mapping{}
	for _, m := range mappings.mappings {
		bySKU[m.RalawiseSKU] = m
	}
	if m := bySKU["JH001DPBK2XL"]; m == nil || m.VariantID != 10 || m.ProductID != 1 {
		t.Errorf("unexpected mapping %+v", m)
	}
	if m := bySKU["TS010WHTM"]; m == nil || m.VariantID != 11 {
		t.Errorf("expected trimmed SKU mapped, got %+v", m)
	}
	if _, ok := bySKU["my-own-sku"]; ok {
		t.Error("non-conforming SKU must not be mapped")
	}
	if _, ok := bySKU["AB12"]; ok {
		t.Error("short SKU must not be mapped")
	}
}

func TestRefreshFatalOnCatalogWalk(t *testing.T) {
	catalog := &fakeCatalog{listErr: errors.New("upstream 500")}
	svc := NewMappingService(&fakeMappings{}, catalog, zerolog.Nop())

	if _, err := svc.Refresh(context.Background(), "demo.myshopify.com", "tok"); err == nil {
		t.Fatal("expected error when the catalog walk fails")
	}
}

func TestStatsAggregatesCounters(t *testing.T) {
	catalog := &fakeCatalog{products: 120, collections: 8}
	mappings := &fakeMappings{}
	sink := &fakeSink{}

	mappings.mappings = []*domain.Mapping{
		{Shop: "demo.myshopify.com", RalawiseSKU: "AAA111", VariantID: 1},
		{Shop: "demo.myshopify.com", RalawiseSKU: "BBB222", VariantID: 2},
		{Shop: "other.myshopify.com", RalawiseSKU: "CCC333", VariantID: 3},
	}
	sink.entries = []*domain.LogEntry{
		{SKU: "AAA111", Status: domain.StatusSuccess},
		{SKU: "BBB222", Status: domain.StatusError, Error: "boom"},
		{SKU: "AAA111", Status: domain.StatusError, Error: "boom again"},
	}

	svc := NewStatsService(mappings, catalog, sink, zerolog.Nop())
	stats, err := svc.Stats(context.Background(), "demo.myshopify.com", "tok")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if stats.Products != 120 || stats.Collections != 8 {
		t.Errorf("unexpected catalog counts %+v", stats)
	}
	if stats.MappedSKUs != 2 {
		t.Errorf("expected 2 mapped SKUs for the shop, got %d", stats.MappedSKUs)
	}
	if stats.SyncErrors != 2 {
		t.Errorf("expected 2 sync errors, got %d", stats.SyncErrors)
	}
}
