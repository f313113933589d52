// Package returns implements the sales-return and purchase-return journals
// over one polymorphic header table.
package returns

import (
	"errors"
	"time"
)

// Return type discriminators stored in the header row.
const (
	TypeSale     = "sale"
	TypePurchase = "purchase"
)

// Return is the journal header. CustomerID is set for sales returns,
// SupplierID for purchase returns.
type Return struct {
	ID          int64     `json:"id" db:"id"`
	ShopID      int64     `json:"shop_id" db:"shop_id"`
	Type        string    `json:"return_type" db:"return_type"`
	ReferenceNo *int64    `json:"reference_no" db:"reference_no"`
	CustomerID  *int64    `json:"customer_id" db:"customer_id"`
	SupplierID  *int64    `json:"supplier_id" db:"supplier_id"`
	Date        time.Time `json:"date" db:"date"`
	Reason      string    `json:"reason" db:"reason"`
	Total       float64   `json:"total" db:"total"`
	Remarks     string    `json:"remarks" db:"remarks"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Party decorations for list and detail views.
	PartyName  string `json:"party_name,omitempty" db:"-"`
	PartyPhone string `json:"phone,omitempty" db:"-"`
}

// ReturnItem is one returned line.
type ReturnItem struct {
	ID        int64   `json:"id" db:"id"`
	ShopID    int64   `json:"shop_id" db:"shop_id"`
	ReturnID  int64   `json:"return_id" db:"return_id"`
	ProductID int64   `json:"medicine_id" db:"product_id"`
	BatchNo   string  `json:"batch_no" db:"batch_no"`
	Qty       int64   `json:"qty" db:"qty"`
	Rate      float64 `json:"rate" db:"rate"`
	GSTRate   float64 `json:"gst" db:"gst"`
	Amount    float64 `json:"amount" db:"amount"`
}

// CreateSalesReturnRequest is the POST /returns payload.
type CreateSalesReturnRequest struct {
	SaleID     *int64              `json:"sale_id" validate:"omitempty,gt=0"`
	CustomerID *int64              `json:"customer_id" validate:"omitempty,gt=0"`
	Date       string              `json:"date" validate:"required,datetime=2006-01-02"`
	Reason     string              `json:"reason"`
	Remarks    string              `json:"remarks"`
	Items      []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreatePurchaseReturnRequest is the POST /purchase-returns payload.
type CreatePurchaseReturnRequest struct {
	SupplierID *int64              `json:"supplier_id" validate:"omitempty,gt=0"`
	Date       string              `json:"date" validate:"required,datetime=2006-01-02"`
	Reason     string              `json:"reason"`
	Remarks    string              `json:"remarks"`
	Items      []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReturnItemRequest is one incoming line.
type ReturnItemRequest struct {
	ProductID int64   `json:"medicine_id" validate:"required,gt=0"`
	BatchNo   string  `json:"batch_no"`
	Qty       int64   `json:"qty" validate:"required,gt=0"`
	Rate      float64 `json:"rate" validate:"gte=0"`
	GSTRate   float64 `json:"gst_rate" validate:"gte=0"`
	Amount    float64 `json:"amount" validate:"gte=0"`
}

var (
	// ErrNotFound indicates no return of the expected type exists in this shop.
	ErrNotFound = errors.New("returns: return not found")
	// ErrNoItems indicates an empty item list.
	ErrNoItems = errors.New("returns: no items provided")
)
