package domain

import "time"

// ShopToken is the stored Shopify admin access token for one shop. Shops with
// ReadyForSync set are picked up by the batch worker.
type ShopToken struct {
	Shop         string    `json:"shop"`
	AccessToken  string    `json:"access_token"`
	ReadyForSync bool      `json:"ready_for_sync"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
