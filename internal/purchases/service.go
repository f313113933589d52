package purchases

import (
	"context"
	"fmt"
	"time"

	"github.com/pharmapos/pharmapos/internal/money"
	"github.com/pharmapos/pharmapos/internal/stock"
)

// Service coordinates the purchase journal: bill capture and stock lot
// intake in one transaction.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

type normalizedItem struct {
	BillItem
	expiry *time.Time
}

// CreateBill normalizes the lines, writes the header and items, and opens
// one stock lot per line.
func (s *Service) CreateBill(ctx context.Context, shopID int64, req CreateBillRequest) (CreateBillResult, error) {
	if len(req.Items) == 0 {
		return CreateBillResult{}, ErrNoItems
	}

	invoiceDate := s.now().UTC().Truncate(24 * time.Hour)
	if req.InvoiceDate != "" {
		parsed, err := time.Parse("2006-01-02", req.InvoiceDate)
		if err != nil {
			return CreateBillResult{}, fmt.Errorf("purchases: invalid invoice date %q", req.InvoiceDate)
		}
		invoiceDate = parsed
	}

	items := make([]normalizedItem, 0, len(req.Items))
	var sub, gst, disc float64
	for _, in := range req.Items {
		base, lineGST, lineDisc, total := money.LineTotals(float64(in.Quantity), in.PurchaseRate, in.GSTRate, in.Discount)
		sub += base
		gst += lineGST
		disc += lineDisc

		var expiry *time.Time
		if in.ExpiryDate != nil && *in.ExpiryDate != "" {
			parsed, err := time.Parse("2006-01-02", *in.ExpiryDate)
			if err != nil {
				return CreateBillResult{}, fmt.Errorf("purchases: invalid expiry date %q", *in.ExpiryDate)
			}
			expiry = &parsed
		}
		items = append(items, normalizedItem{
			BillItem: BillItem{
				ShopID:       shopID,
				ProductID:    in.ProductID,
				ProductName:  in.ProductName,
				BatchNo:      in.BatchNo,
				ExpiryDate:   expiry,
				Quantity:     in.Quantity,
				FreeQty:      in.FreeQty,
				Unit:         in.Unit,
				PurchaseRate: in.PurchaseRate,
				MRP:          in.MRP,
				GSTRate:      in.GSTRate,
				Discount:     in.Discount,
				Total:        total,
				HSNCode:      in.HSNCode,
			},
			expiry: expiry,
		})
	}

	grand := money.Round2(sub + gst - disc)
	paid := money.Round2(req.PaidAmount)
	switch req.PaymentStatus {
	case "Paid", "":
		paid = grand
	case "Unpaid":
		paid = 0
	}
	totals := Totals{
		SubTotal:   money.Round2(sub),
		TotalGST:   money.Round2(gst),
		Discount:   money.Round2(disc),
		GrandTotal: grand,
		Paid:       paid,
		Due:        money.Round2(grand - paid),
	}

	var result CreateBillResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		billID, err := tx.InsertBill(ctx, Bill{
			ShopID:        shopID,
			SupplierID:    req.SupplierID,
			InvoiceNo:     req.InvoiceNo,
			InvoiceDate:   invoiceDate,
			BillType:      req.BillType,
			PaymentStatus: req.PaymentStatus,
			PaymentMode:   req.PaymentMode,
			PaidAmount:    totals.Paid,
			DueAmount:     totals.Due,
			TotalAmount:   totals.GrandTotal,
		})
		if err != nil {
			return err
		}

		for _, item := range items {
			item.BillID = billID
			if _, err := tx.InsertBillItem(ctx, item.BillItem); err != nil {
				return fmt.Errorf("purchases: insert item: %w", err)
			}
			// Free units ride along in the journal only; the counter and the
			// lot both grow by the billed quantity.
			if _, err := stock.ReceiveBatch(ctx, tx, stock.ReceiveInput{
				ShopID:       shopID,
				ProductID:    item.ProductID,
				BatchNo:      item.BatchNo,
				ExpiryDate:   item.expiry,
				Qty:          item.Quantity,
				PurchaseRate: item.PurchaseRate,
				MRP:          item.MRP,
				BillID:       billID,
			}); err != nil {
				return err
			}
		}

		result = CreateBillResult{BillID: billID, Totals: totals, ItemsCount: len(items)}
		return nil
	})
	if err != nil {
		return CreateBillResult{}, err
	}
	return result, nil
}

// ListBills returns all bills for the shop, newest first, with supplier
// names.
func (s *Service) ListBills(ctx context.Context, shopID int64) ([]Bill, error) {
	return s.repo.ListBills(ctx, shopID)
}

// GetBill returns one bill with its items.
func (s *Service) GetBill(ctx context.Context, shopID, billID int64) (Bill, []BillItem, error) {
	return s.repo.GetBill(ctx, shopID, billID)
}
