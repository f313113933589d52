// Package purchases implements the purchase bill journal: bill capture with
// line normalization and stock lot intake.
package purchases

import (
	"errors"
	"time"
)

// Bill is the purchase journal header.
type Bill struct {
	ID            int64     `json:"id" db:"id"`
	ShopID        int64     `json:"shop_id" db:"shop_id"`
	SupplierID    int64     `json:"supplier_id" db:"supplier_id"`
	InvoiceNo     string    `json:"invoice_no" db:"invoice_no"`
	InvoiceDate   time.Time `json:"invoice_date" db:"invoice_date"`
	BillType      string    `json:"bill_type" db:"bill_type"`
	PaymentStatus string    `json:"payment_status" db:"payment_status"`
	PaymentMode   string    `json:"payment_mode" db:"payment_mode"`
	PaidAmount    float64   `json:"paid_amount" db:"paid_amount"`
	DueAmount     float64   `json:"due_amount" db:"due_amount"`
	TotalAmount   float64   `json:"total_amount" db:"total_amount"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	// SupplierName decorates list and detail views.
	SupplierName string `json:"supplier_name,omitempty" db:"-"`
}

// BillItem is one journal line. Each line spawns exactly one stock lot on
// intake.
type BillItem struct {
	ID           int64      `json:"id" db:"id"`
	ShopID       int64      `json:"shop_id" db:"shop_id"`
	BillID       int64      `json:"purchase_bill_id" db:"purchase_bill_id"`
	ProductID    int64      `json:"medicine_id" db:"product_id"`
	ProductName  string     `json:"product_name" db:"product_name"`
	BatchNo      string     `json:"batch_no" db:"batch_no"`
	ExpiryDate   *time.Time `json:"expiry_date" db:"expiry_date"`
	Quantity     int64      `json:"quantity" db:"quantity"`
	FreeQty      int64      `json:"free_qty" db:"free_qty"`
	Unit         string     `json:"unit" db:"unit"`
	PurchaseRate float64    `json:"purchase_rate" db:"purchase_rate"`
	MRP          float64    `json:"mrp" db:"mrp"`
	GSTRate      float64    `json:"gst_rate" db:"gst_rate"`
	Discount     float64    `json:"discount" db:"discount"`
	Total        float64    `json:"total" db:"total"`
	HSNCode      string     `json:"hsn_code" db:"hsn_code"`
}

// CreateBillRequest is the POST payload.
type CreateBillRequest struct {
	SupplierID    int64             `json:"supplier_id" validate:"required,gt=0"`
	InvoiceNo     string            `json:"invoice_no" validate:"required,max=60"`
	InvoiceDate   string            `json:"invoice_date" validate:"omitempty,datetime=2006-01-02"`
	BillType      string            `json:"bill_type" validate:"omitempty,max=30"`
	PaymentStatus string            `json:"payment_status" validate:"omitempty,oneof=Paid Unpaid Partial"`
	PaymentMode   string            `json:"payment_mode" validate:"omitempty,max=30"`
	PaidAmount    float64           `json:"paid_amount" validate:"gte=0"`
	Items         []BillItemRequest `json:"items" validate:"required,min=1,dive"`
}

// BillItemRequest is one incoming line. GST and discount are percentages of
// the line base.
type BillItemRequest struct {
	ProductID    int64   `json:"medicine_id" validate:"required,gt=0"`
	ProductName  string  `json:"product_name" validate:"required"`
	BatchNo      string  `json:"batch_no"`
	ExpiryDate   *string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	Quantity     int64   `json:"quantity" validate:"required,gt=0"`
	FreeQty      int64   `json:"free_qty" validate:"gte=0"`
	Unit         string  `json:"unit"`
	PurchaseRate float64 `json:"purchase_rate" validate:"gte=0"`
	MRP          float64 `json:"mrp" validate:"gte=0"`
	GSTRate      float64 `json:"gst_rate" validate:"gte=0"`
	Discount     float64 `json:"discount" validate:"gte=0"`
	HSNCode      string  `json:"hsn_code"`
}

// Totals is the computed money summary returned after creation.
type Totals struct {
	SubTotal   float64 `json:"subTotal"`
	TotalGST   float64 `json:"totalGST"`
	Discount   float64 `json:"totalDiscount"`
	GrandTotal float64 `json:"grandTotal"`
	Paid       float64 `json:"paid"`
	Due        float64 `json:"due"`
}

// CreateBillResult is returned after a successful POST.
type CreateBillResult struct {
	BillID     int64  `json:"bill_id"`
	Totals     Totals `json:"totals"`
	ItemsCount int    `json:"itemsCount"`
}

var (
	// ErrNotFound indicates the bill does not exist in this shop.
	ErrNotFound = errors.New("purchases: bill not found")
	// ErrNoItems indicates an empty item list.
	ErrNoItems = errors.New("purchases: no items provided")
	// ErrDuplicateInvoice indicates the (shop, invoice_no) pair already exists.
	ErrDuplicateInvoice = errors.New("purchases: invoice number already recorded")
)
