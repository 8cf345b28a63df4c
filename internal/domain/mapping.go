package domain

import (
	"regexp"
	"strings"
	"time"
)

// Mapping associates a Ralawise SKU with a Shopify product variant for one shop.
// There is at most one mapping per (shop, variant_id).
type Mapping struct {
	Shop        string    `json:"shop"`
	RalawiseSKU string    `json:"ralawise_sku"`
	VariantID   int64     `json:"variant_id"`
	ProductID   int64     `json:"product_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ralawiseSKUPattern matches the supplier's SKU naming convention,
// e.g. "JH001DPBKXS".
var ralawiseSKUPattern = regexp.MustCompile(`(?i)^[A-Z0-9]{6,}$`)

// IsRalawiseSKU reports whether sku conforms to the Ralawise SKU format.
// Mappings with non-conforming SKUs are excluded from sync runs so stale
// rows don't consume supplier API quota.
func IsRalawiseSKU(sku string) bool {
	return ralawiseSKUPattern.MatchString(strings.TrimSpace(sku))
}
