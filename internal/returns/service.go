package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/pharmapos/pharmapos/internal/money"
	"github.com/pharmapos/pharmapos/internal/stock"
)

// Service coordinates both return journals. A sales return puts sold units
// back on the shelf; a purchase return hands lot units back to the supplier.
// Deleting a return re-applies the original movement.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateSalesReturn writes the header and items and restores stock per line.
func (s *Service) CreateSalesReturn(ctx context.Context, shopID int64, req CreateSalesReturnRequest) (int64, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return 0, err
	}
	header := Return{
		ShopID:      shopID,
		Type:        TypeSale,
		ReferenceNo: req.SaleID,
		CustomerID:  req.CustomerID,
		Date:        date,
		Reason:      req.Reason,
		Remarks:     req.Remarks,
	}
	return s.create(ctx, shopID, header, req.Items, stock.ReverseSale)
}

// CreatePurchaseReturn writes the header and items and removes stock per
// line.
func (s *Service) CreatePurchaseReturn(ctx context.Context, shopID int64, req CreatePurchaseReturnRequest) (int64, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return 0, err
	}
	header := Return{
		ShopID:     shopID,
		Type:       TypePurchase,
		SupplierID: req.SupplierID,
		Date:       date,
		Reason:     req.Reason,
		Remarks:    req.Remarks,
	}
	return s.create(ctx, shopID, header, req.Items, stock.ReturnPurchase)
}

type ledgerOp func(ctx context.Context, tx stock.TxLedger, shopID, productID int64, batchNo string, qty int64) error

func (s *Service) create(ctx context.Context, shopID int64, header Return, items []ReturnItemRequest, apply ledgerOp) (int64, error) {
	if len(items) == 0 {
		return 0, ErrNoItems
	}
	var total float64
	for _, item := range items {
		total += item.Amount
	}
	header.Total = money.Round2(total)

	var returnID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertReturn(ctx, header)
		if err != nil {
			return fmt.Errorf("returns: insert header: %w", err)
		}
		for _, item := range items {
			if err := tx.InsertReturnItem(ctx, ReturnItem{
				ShopID:    shopID,
				ReturnID:  id,
				ProductID: item.ProductID,
				BatchNo:   item.BatchNo,
				Qty:       item.Qty,
				Rate:      item.Rate,
				GSTRate:   item.GSTRate,
				Amount:    item.Amount,
			}); err != nil {
				return fmt.Errorf("returns: insert item: %w", err)
			}
			if err := apply(ctx, tx, shopID, item.ProductID, item.BatchNo, item.Qty); err != nil {
				return err
			}
		}
		returnID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return returnID, nil
}

// DeleteSalesReturn reverses the stock restoration and removes the rows.
func (s *Service) DeleteSalesReturn(ctx context.Context, shopID, returnID int64) error {
	return s.delete(ctx, shopID, returnID, TypeSale, stock.ReverseSalesReturn)
}

// DeletePurchaseReturn restores the removed stock and deletes the rows.
func (s *Service) DeletePurchaseReturn(ctx context.Context, shopID, returnID int64) error {
	return s.delete(ctx, shopID, returnID, TypePurchase, stock.ReversePurchaseReturn)
}

func (s *Service) delete(ctx context.Context, shopID, returnID int64, returnType string, reverse ledgerOp) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		storedType, err := tx.ReturnType(ctx, shopID, returnID)
		if err != nil {
			return err
		}
		if storedType != returnType {
			return ErrNotFound
		}
		items, err := tx.ListReturnItems(ctx, shopID, returnID)
		if err != nil {
			return fmt.Errorf("returns: list items: %w", err)
		}
		for _, item := range items {
			if err := reverse(ctx, tx, shopID, item.ProductID, item.BatchNo, item.Qty); err != nil {
				return err
			}
		}
		if err := tx.DeleteReturnItems(ctx, shopID, returnID); err != nil {
			return fmt.Errorf("returns: delete items: %w", err)
		}
		if err := tx.DeleteReturn(ctx, shopID, returnID); err != nil {
			return fmt.Errorf("returns: delete header: %w", err)
		}
		return nil
	})
}

// ListSalesReturns returns sale-type headers with customer names.
func (s *Service) ListSalesReturns(ctx context.Context, shopID int64) ([]Return, error) {
	return s.repo.ListReturns(ctx, shopID, TypeSale)
}

// ListPurchaseReturns returns purchase-type headers with supplier names.
func (s *Service) ListPurchaseReturns(ctx context.Context, shopID int64) ([]Return, error) {
	return s.repo.ListReturns(ctx, shopID, TypePurchase)
}

// GetSalesReturn returns one sale-type return with its items.
func (s *Service) GetSalesReturn(ctx context.Context, shopID, returnID int64) (Return, []ReturnItem, error) {
	return s.repo.GetReturn(ctx, shopID, returnID, TypeSale)
}

// GetPurchaseReturn returns one purchase-type return with its items.
func (s *Service) GetPurchaseReturn(ctx context.Context, shopID, returnID int64) (Return, []ReturnItem, error) {
	return s.repo.GetReturn(ctx, shopID, returnID, TypePurchase)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("returns: invalid date %q", s)
	}
	return t, nil
}
