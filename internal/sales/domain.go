package sales

import (
	"errors"
	"time"
)

// Sale is a journal header for one invoice.
type Sale struct {
	ID            int64     `json:"id" db:"id"`
	ShopID        int64     `json:"shop_id" db:"shop_id"`
	InvoiceNumber string    `json:"invoice_number" db:"invoice_number"`
	CustomerID    *int64    `json:"customer_id" db:"customer_id"`
	Date          time.Time `json:"date" db:"date"`
	BillType      string    `json:"bill_type" db:"bill_type"`
	PaymentStatus string    `json:"payment_status" db:"payment_status"`
	PaymentMode   string    `json:"payment_mode" db:"payment_mode"`
	PaidAmount    float64   `json:"paid_amount" db:"paid_amount"`
	DueAmount     float64   `json:"due_amount" db:"due_amount"`
	Total         float64   `json:"total" db:"total"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	// Customer decoration, filled on single-sale reads.
	CustomerName    string `json:"customer_name,omitempty" db:"-"`
	CustomerPhone   string `json:"phone,omitempty" db:"-"`
	CustomerAddress string `json:"address,omitempty" db:"-"`
}

// SaleItem is one dispensed line. BatchNo records which lot the seller
// picked; it is a string, not a foreign key, and reversal matches on it.
type SaleItem struct {
	ID          int64      `json:"item_id" db:"id"`
	ShopID      int64      `json:"shop_id" db:"shop_id"`
	SaleID      int64      `json:"sale_id" db:"sale_id"`
	ProductID   int64      `json:"medicine_id" db:"product_id"`
	ProductName string     `json:"product_name" db:"product_name"`
	HSN         string     `json:"hsn" db:"hsn"`
	BatchNo     string     `json:"batch" db:"batch_no"`
	ExpiryDate  *time.Time `json:"expiry_date" db:"expiry_date"`
	Unit        string     `json:"unit" db:"unit"`
	Qty         int64      `json:"qty" db:"qty"`
	Rate        float64    `json:"rate" db:"rate"`
	MRP         float64    `json:"mrp" db:"mrp"`
	GSTRate     float64    `json:"gst" db:"gst"`
	Discount    float64    `json:"disc" db:"disc"`
	Amount      float64    `json:"amount" db:"amount"`
}

// SaleSummary is one row of the sales list view.
type SaleSummary struct {
	ID            int64     `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
	BillType      string    `json:"bill_type"`
	PaymentMode   string    `json:"payment_mode"`
	CustomerName  string    `json:"customer_name"`
	Total         float64   `json:"total"`
	PaidAmount    float64   `json:"paid_amount"`
	DueAmount     float64   `json:"due_amount"`
	PaymentStatus string    `json:"payment_status"`
}

// CreateSaleRequest is the POST payload.
type CreateSaleRequest struct {
	CustomerID    *int64            `json:"customer_id" validate:"omitempty,gt=0"`
	Date          string            `json:"date" validate:"required,datetime=2006-01-02"`
	BillType      string            `json:"bill_type" validate:"omitempty,max=30"`
	PaymentStatus string            `json:"payment_status" validate:"omitempty,oneof=Paid Unpaid Partial"`
	PaymentMode   string            `json:"payment_mode" validate:"omitempty,max=30"`
	PaidAmount    float64           `json:"paid_amount" validate:"gte=0"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleItemRequest is one line of the POST payload.
type SaleItemRequest struct {
	ProductID   int64   `json:"medicine_id" validate:"required,gt=0"`
	ProductName string  `json:"product_name" validate:"required"`
	HSN         string  `json:"hsn"`
	BatchNo     string  `json:"batch_no"`
	ExpiryDate  *string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	Unit        string  `json:"unit"`
	Quantity    int64   `json:"quantity" validate:"required,gt=0"`
	Price       float64 `json:"price" validate:"gte=0"`
	MRP         float64 `json:"mrp_price" validate:"gte=0"`
	GSTRate     float64 `json:"gst_rate" validate:"gte=0"`
	Discount    float64 `json:"disc" validate:"gte=0"`
}

// Totals is the normalized money breakdown returned on creation.
type Totals struct {
	SubTotal   float64 `json:"subTotal"`
	TotalGST   float64 `json:"totalGST"`
	Discount   float64 `json:"totalDiscount"`
	GrandTotal float64 `json:"grandTotal"`
	Paid       float64 `json:"paid"`
	Due        float64 `json:"due"`
}

// CreateSaleResult is the creation response body.
type CreateSaleResult struct {
	SaleID        int64  `json:"sale_id"`
	InvoiceNumber string `json:"invoice_number"`
	Totals        Totals `json:"totals"`
}

// ListFilter narrows the sales list.
type ListFilter struct {
	Query      string
	Status     string
	From       *time.Time
	To         *time.Time
	DateFilter string
}

var (
	// ErrNotFound indicates the sale does not exist in this shop.
	ErrNotFound = errors.New("sales: sale not found")
	// ErrNoItems indicates an empty item list.
	ErrNoItems = errors.New("sales: no items provided")
	// ErrInsufficientStock indicates the aggregate pre-check failed.
	ErrInsufficientStock = errors.New("sales: not enough stock")
)
