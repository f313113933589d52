package stock

import (
	"errors"
	"time"
)

// LowStockThreshold is the aggregate quantity at or below which a product is
// reported as running low.
const LowStockThreshold = 10

// NearExpiryWindow is how far ahead the expiry report looks for batches that
// are about to expire.
const NearExpiryWindow = 30 * 24 * time.Hour

// Aggregate is the per-shop stock counter for one product. It is the fast
// path for availability checks; batch rows remain authoritative for expiry
// reporting and consumption order.
type Aggregate struct {
	ShopID       int64     `json:"shop_id" db:"shop_id"`
	ProductID    int64     `json:"product_id" db:"product_id"`
	Stock        int64     `json:"stock" db:"stock"`
	PurchaseRate float64   `json:"purchase_rate" db:"purchase_rate"`
	MRP          float64   `json:"mrp" db:"mrp"`
	UpdatedAt    time.Time `json:"last_updated" db:"last_updated"`
}

// Batch is one received lot of a product. Lots are never merged: every
// purchase line appends a new row, even under a duplicate batch number.
type Batch struct {
	ID           int64      `json:"id" db:"id"`
	ShopID       int64      `json:"shop_id" db:"shop_id"`
	ProductID    int64      `json:"product_id" db:"product_id"`
	BatchNo      string     `json:"batch_no" db:"batch_no"`
	ExpiryDate   *time.Time `json:"expiry_date" db:"expiry_date"`
	Quantity     int64      `json:"quantity" db:"quantity"`
	SoldQty      int64      `json:"sold_qty" db:"sold_qty"`
	PurchaseRate float64    `json:"purchase_rate" db:"purchase_rate"`
	MRP          float64    `json:"mrp" db:"mrp"`
	BillID       int64      `json:"purchase_bill_id" db:"purchase_bill_id"`
}

// Remaining returns the sellable amount left in the lot.
func (b Batch) Remaining() int64 {
	return b.Quantity - b.SoldQty
}

// Expired reports whether the lot is past its expiry date. Lots without an
// expiry date never expire.
func (b Batch) Expired(today time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(today)
}

// Sellable reports whether the lot can still be dispensed as of today.
func (b Batch) Sellable(today time.Time) bool {
	return b.Remaining() > 0 && !b.Expired(today)
}

// BatchAllocation records how much of a sale was drawn from one lot.
type BatchAllocation struct {
	BatchID int64  `json:"batch_id"`
	BatchNo string `json:"batch_no"`
	Qty     int64  `json:"qty"`
}

// ReceiveInput describes a purchase line entering the ledger. BillID links
// the lot back to the purchase bill it arrived on.
type ReceiveInput struct {
	ShopID       int64
	ProductID    int64
	BillID       int64
	BatchNo      string
	ExpiryDate   *time.Time
	Qty          int64
	PurchaseRate float64
	MRP          float64
}

// StockRow is one line of the current-stock view: the shared catalog entry
// decorated with this shop's aggregate counter.
type StockRow struct {
	ProductID    int64      `json:"id"`
	ProductName  string     `json:"name"`
	HSN          string     `json:"hsn"`
	GSTRate      float64    `json:"gst"`
	Qty          int64      `json:"qty"`
	PurchaseRate float64    `json:"purchase_rate"`
	MRP          float64    `json:"mrp"`
	LastUpdated  *time.Time `json:"last_updated"`
}

// BatchView is one selectable lot in the batch picker.
type BatchView struct {
	BatchNo      string     `json:"batch_no"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	AvailableQty int64      `json:"available_qty"`
	PurchaseRate float64    `json:"purchase_rate"`
	MRP          float64    `json:"mrp"`
	Pack         string     `json:"pack"`
	HSN          string     `json:"hsn"`
	GSTRate      float64    `json:"gst_rate"`
}

// ExpiryStatus classifies a batch in the expiry report.
type ExpiryStatus string

const (
	// ExpiryStatusExpired marks batches already past their expiry date.
	ExpiryStatusExpired ExpiryStatus = "expired"
	// ExpiryStatusNear marks batches expiring within the report window.
	ExpiryStatusNear ExpiryStatus = "near"
)

// ExpiryRow is one batch in the expiry report.
type ExpiryRow struct {
	ProductID    int64        `json:"product_id"`
	ProductName  string       `json:"product_name"`
	BatchNo      string       `json:"batch_no"`
	ExpiryDate   time.Time    `json:"expiry_date"`
	Qty          int64        `json:"qty"`
	MRP          float64      `json:"mrp"`
	PurchaseRate float64      `json:"purchase_rate"`
	HSN          string       `json:"hsn"`
	GSTRate      float64      `json:"gst_rate"`
	SupplierName string       `json:"supplier_name"`
	Status       ExpiryStatus `json:"expiry_status"`
}

// ExpiryReport groups expired and near-expiry batches for one shop.
type ExpiryReport struct {
	Expired      []ExpiryRow `json:"expired"`
	NearExpiry   []ExpiryRow `json:"nearExpiry"`
	ExpiredCount int         `json:"expiredCount"`
	NearCount    int         `json:"nearCount"`
}

// LowStockRow is one product at or below the low-stock threshold.
type LowStockRow struct {
	ProductID    int64   `json:"id"`
	ProductName  string  `json:"name"`
	HSN          string  `json:"hsn"`
	GSTRate      float64 `json:"gst"`
	Stock        int64   `json:"stock"`
	PurchaseRate float64 `json:"purchase_rate"`
	MRP          float64 `json:"mrp"`
	Expiry       string  `json:"expiry"`
}

// ErrAggregateNotFound indicates no stock counter exists yet for the product
// in this shop.
var ErrAggregateNotFound = errors.New("stock: aggregate not found")

// ErrInvalidQuantity indicates a non-positive quantity was supplied.
var ErrInvalidQuantity = errors.New("stock: quantity must be positive")
