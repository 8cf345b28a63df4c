package domain

// StockResult is the supplier's answer for one SKU. A nil Quantity means
// Ralawise has no record for the SKU, which is a valid negative result rather
// than an error.
type StockResult struct {
	SKU      string
	Quantity *int
}

// CatalogVariant is one storefront variant as seen when paging the product
// catalog during a mapping refresh.
type CatalogVariant struct {
	ProductID int64
	VariantID int64
	SKU       string
}

// DashboardStats aggregates the counters shown on the dashboard.
type DashboardStats struct {
	Products    int   `json:"products"`
	Collections int   `json:"collections"`
	MappedSKUs  int64 `json:"mapped_skus"`
	SyncErrors  int   `json:"sync_errors"`
}
