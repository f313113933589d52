// Package catalog serves the shared product master list and seeds shop
// counters for products a shop has not stocked yet.
package catalog

import "time"

// Product is one shared catalog entry decorated with its reference names.
type Product struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	HSNCode   string    `json:"hsn_code" db:"hsn_code"`
	GSTRate   float64   `json:"gst_rate" db:"gst_rate"`
	PackSize  string    `json:"pack_size" db:"pack_size"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Category     string `json:"category" db:"-"`
	Manufacturer string `json:"manufacturer" db:"-"`
	Unit         string `json:"unit" db:"-"`
}

// ListFilter narrows the catalog list.
type ListFilter struct {
	Search       string
	Category     string
	Manufacturer string
	Page         int
	Limit        int
}

// ListResult pairs one page of products with the filtered total.
type ListResult struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// SyncResult reports how many zero-stock counters were created.
type SyncResult struct {
	Synced int64 `json:"synced"`
}
