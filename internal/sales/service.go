package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/pharmapos/pharmapos/internal/money"
	"github.com/pharmapos/pharmapos/internal/stock"
)

// StockPort is the aggregate fast path consulted before a sale commits.
type StockPort interface {
	Available(ctx context.Context, shopID, productID int64) (int64, error)
}

// Service coordinates the sale journal: creation with FEFO stock allocation
// and deletion with full reversal.
type Service struct {
	repo  RepositoryPort
	stock StockPort
	now   func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, stockPort StockPort) *Service {
	return &Service{repo: repo, stock: stockPort, now: time.Now}
}

// CreateSale validates availability, writes the header and items, and runs
// the allocation engine per item inside one transaction.
func (s *Service) CreateSale(ctx context.Context, shopID int64, req CreateSaleRequest) (CreateSaleResult, error) {
	if len(req.Items) == 0 {
		return CreateSaleResult{}, ErrNoItems
	}
	saleDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return CreateSaleResult{}, fmt.Errorf("sales: invalid date %q", req.Date)
	}

	// Availability pre-check against the aggregate counter. Past this point
	// the allocation engine never rejects for shortfall.
	for _, item := range req.Items {
		available, err := s.stock.Available(ctx, shopID, item.ProductID)
		if err != nil {
			return CreateSaleResult{}, fmt.Errorf("sales: check stock: %w", err)
		}
		if available < item.Quantity {
			return CreateSaleResult{}, fmt.Errorf("%w for %q: available %d, requested %d",
				ErrInsufficientStock, item.ProductName, available, item.Quantity)
		}
	}

	totals := s.computeTotals(req)
	var result CreateSaleResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		lastID, err := tx.LastSaleID(ctx, shopID)
		if err != nil {
			return fmt.Errorf("sales: last sale id: %w", err)
		}
		invoiceNumber := fmt.Sprintf("INV-%d-%s-%04d", shopID, s.now().UTC().Format("20060102"), lastID+1)

		saleID, err := tx.InsertSale(ctx, Sale{
			ShopID:        shopID,
			InvoiceNumber: invoiceNumber,
			CustomerID:    req.CustomerID,
			Date:          saleDate,
			BillType:      req.BillType,
			PaymentStatus: req.PaymentStatus,
			PaymentMode:   req.PaymentMode,
			PaidAmount:    totals.Paid,
			DueAmount:     totals.Due,
			Total:         totals.GrandTotal,
		})
		if err != nil {
			return fmt.Errorf("sales: insert sale: %w", err)
		}

		for _, item := range req.Items {
			var expiry *time.Time
			if item.ExpiryDate != nil && *item.ExpiryDate != "" {
				parsed, err := time.Parse("2006-01-02", *item.ExpiryDate)
				if err != nil {
					return fmt.Errorf("sales: invalid expiry date %q", *item.ExpiryDate)
				}
				expiry = &parsed
			}
			if err := tx.InsertSaleItem(ctx, SaleItem{
				ShopID:      shopID,
				SaleID:      saleID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				HSN:         item.HSN,
				BatchNo:     item.BatchNo,
				ExpiryDate:  expiry,
				Unit:        item.Unit,
				Qty:         item.Quantity,
				Rate:        item.Price,
				MRP:         item.MRP,
				GSTRate:     item.GSTRate,
				Discount:    item.Discount,
				Amount:      money.Round2(float64(item.Quantity) * item.Price),
			}); err != nil {
				return fmt.Errorf("sales: insert item: %w", err)
			}
			if _, err := stock.AllocateSale(ctx, tx, shopID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		result = CreateSaleResult{SaleID: saleID, InvoiceNumber: invoiceNumber, Totals: totals}
		return nil
	})
	if err != nil {
		return CreateSaleResult{}, err
	}
	return result, nil
}

func (s *Service) computeTotals(req CreateSaleRequest) Totals {
	var sub, gst, disc float64
	for _, item := range req.Items {
		base, lineGST, lineDisc, _ := money.LineTotals(float64(item.Quantity), item.Price, item.GSTRate, 0)
		sub += base
		gst += lineGST
		disc += lineDisc + item.Discount
	}
	grand := money.Round2(sub + gst - disc)
	paid := money.Round2(req.PaidAmount)
	switch req.PaymentStatus {
	case "Paid":
		paid = grand
	case "Unpaid":
		paid = 0
	}
	return Totals{
		SubTotal:   money.Round2(sub),
		TotalGST:   money.Round2(gst),
		Discount:   money.Round2(disc),
		GrandTotal: grand,
		Paid:       paid,
		Due:        money.Round2(grand - paid),
	}
}

// DeleteSale reverses every item's stock effect, then removes the journal
// rows, all in one transaction.
func (s *Service) DeleteSale(ctx context.Context, shopID, saleID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		items, err := tx.ListSaleItems(ctx, shopID, saleID)
		if err != nil {
			return fmt.Errorf("sales: list items: %w", err)
		}
		for _, item := range items {
			if err := stock.ReverseSale(ctx, tx, shopID, item.ProductID, item.BatchNo, item.Qty); err != nil {
				return err
			}
		}
		if err := tx.DeleteSaleItems(ctx, shopID, saleID); err != nil {
			return fmt.Errorf("sales: delete items: %w", err)
		}
		existed, err := tx.DeleteSale(ctx, shopID, saleID)
		if err != nil {
			return fmt.Errorf("sales: delete sale: %w", err)
		}
		if !existed {
			return ErrNotFound
		}
		return nil
	})
}

// ListSales returns the filtered list view. Date shortcuts resolve to a
// single day relative to today.
func (s *Service) ListSales(ctx context.Context, shopID int64, filter ListFilter) ([]SaleSummary, error) {
	if days, ok := dateShortcutDays(filter.DateFilter); ok {
		day := s.now().UTC().AddDate(0, 0, -days)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 0, 1).Add(-time.Second)
		filter.From, filter.To = &start, &end
	}
	return s.repo.ListSales(ctx, shopID, filter)
}

func dateShortcutDays(shortcut string) (int, bool) {
	switch shortcut {
	case "yesterday":
		return 1, true
	case "2days":
		return 2, true
	case "3days":
		return 3, true
	default:
		return 0, false
	}
}

// GetSale returns one invoice with its items and customer decoration.
func (s *Service) GetSale(ctx context.Context, shopID, saleID int64) (Sale, []SaleItem, error) {
	return s.repo.GetSale(ctx, shopID, saleID)
}
