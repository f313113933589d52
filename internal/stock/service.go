package stock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Service exposes the read side of the stock ledger: availability checks,
// the current-stock view, the batch picker and the reporting projections.
// Mutations go through the engine inside the journal services' transactions.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	now   func() time.Time
}

// NewService builds Service. cache may be nil.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Available returns the aggregate counter for one product, zero when the
// product was never stocked in this shop.
func (s *Service) Available(ctx context.Context, shopID, productID int64) (int64, error) {
	if shopID <= 0 || productID <= 0 {
		return 0, errors.New("stock: shop and product required")
	}
	return s.repo.GetAvailable(ctx, shopID, productID)
}

// CurrentStock lists the shared catalog decorated with this shop's counters.
func (s *Service) CurrentStock(ctx context.Context, shopID int64) ([]StockRow, error) {
	if shopID <= 0 {
		return nil, errors.New("stock: shop required")
	}
	return s.repo.ListCurrentStock(ctx, shopID)
}

// ProductBatches lists sellable lots for the batch picker, earliest expiry
// first. When no lot rows exist but the aggregate still shows stock, a single
// synthetic "no-batch" row is returned so legacy stock stays sellable.
func (s *Service) ProductBatches(ctx context.Context, shopID, productID int64) ([]BatchView, error) {
	if shopID <= 0 || productID <= 0 {
		return nil, errors.New("stock: shop and product required")
	}
	views, err := s.repo.ListSellableBatches(ctx, shopID, productID, s.today())
	if err != nil {
		return nil, fmt.Errorf("stock: list batches: %w", err)
	}
	if len(views) > 0 {
		return views, nil
	}

	agg, err := s.repo.GetAggregate(ctx, shopID, productID)
	if errors.Is(err, ErrAggregateNotFound) {
		return []BatchView{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stock: aggregate fallback: %w", err)
	}
	if agg.Stock <= 0 {
		return []BatchView{}, nil
	}
	return []BatchView{{
		BatchNo:      "-",
		AvailableQty: agg.Stock,
		PurchaseRate: agg.PurchaseRate,
		MRP:          agg.MRP,
		Pack:         "-",
		HSN:          "-",
	}}, nil
}

// BatchAvailability returns the remaining quantity of one specific lot.
func (s *Service) BatchAvailability(ctx context.Context, shopID, productID int64, batchNo string) (int64, error) {
	if shopID <= 0 || productID <= 0 {
		return 0, errors.New("stock: shop and product required")
	}
	return s.repo.BatchRemaining(ctx, shopID, productID, batchNo)
}

// ExpiryReport lists batches with remaining stock that are expired or expire
// within the report window, grouped by status.
func (s *Service) ExpiryReport(ctx context.Context, shopID int64) (ExpiryReport, error) {
	if shopID <= 0 {
		return ExpiryReport{}, errors.New("stock: shop required")
	}
	var report ExpiryReport
	key, err := s.cache.BuildKey(ctx, "stock", "expiry", strconv.FormatInt(shopID, 10))
	if err != nil {
		return ExpiryReport{}, err
	}
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		return s.buildExpiryReport(ctx, shopID)
	})
	return report, err
}

func (s *Service) buildExpiryReport(ctx context.Context, shopID int64) (ExpiryReport, error) {
	rows, err := s.repo.ListExpiryRows(ctx, shopID, s.today())
	if err != nil {
		return ExpiryReport{}, fmt.Errorf("stock: expiry rows: %w", err)
	}
	report := ExpiryReport{Expired: []ExpiryRow{}, NearExpiry: []ExpiryRow{}}
	for _, row := range rows {
		switch row.Status {
		case ExpiryStatusExpired:
			report.Expired = append(report.Expired, row)
		case ExpiryStatusNear:
			report.NearExpiry = append(report.NearExpiry, row)
		}
	}
	report.ExpiredCount = len(report.Expired)
	report.NearCount = len(report.NearExpiry)
	return report, nil
}

// LowStock lists products at or below the low-stock threshold.
func (s *Service) LowStock(ctx context.Context, shopID int64) ([]LowStockRow, error) {
	if shopID <= 0 {
		return nil, errors.New("stock: shop required")
	}
	var rows []LowStockRow
	key, err := s.cache.BuildKey(ctx, "stock", "low", strconv.FormatInt(shopID, 10))
	if err != nil {
		return nil, err
	}
	err = s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (any, error) {
		return s.repo.ListLowStock(ctx, shopID, LowStockThreshold)
	})
	return rows, err
}

// InvalidateReports moves the report cache version forward. Called by the
// background warmers after a scan.
func (s *Service) InvalidateReports(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// ShopIDs lists every shop with counter rows.
func (s *Service) ShopIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListShopIDs(ctx)
}

func (s *Service) today() time.Time {
	t := s.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
