// Package jobs hosts the background tasks: nightly expiry and low-stock
// scans that warm the report cache and surface problem products in the logs.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/pharmapos/pharmapos/internal/stock"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskExpiryScan rebuilds the expiry report for every shop.
	TaskExpiryScan = "stock:expiry_scan"
	// TaskLowStockScan logs products at or below the reorder threshold.
	TaskLowStockScan = "stock:low_stock_scan"

	scanParallelism = 4
)

// ScanPayload optionally narrows a scan to one shop. Zero means all shops.
type ScanPayload struct {
	ShopID int64 `json:"shop_id"`
}

// NewExpiryScanTask constructs an expiry scan task.
func NewExpiryScanTask(payload ScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpiryScan, data), nil
}

// NewLowStockScanTask constructs a low-stock scan task.
func NewLowStockScanTask(payload ScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// Scanner runs the stock scans against the service layer.
type Scanner struct {
	logger *slog.Logger
	stock  *stock.Service
}

// NewScanner constructs Scanner.
func NewScanner(logger *slog.Logger, stockService *stock.Service) *Scanner {
	return &Scanner{logger: logger, stock: stockService}
}

func (s *Scanner) shopIDs(ctx context.Context, payload ScanPayload) ([]int64, error) {
	if payload.ShopID > 0 {
		return []int64{payload.ShopID}, nil
	}
	return s.stock.ShopIDs(ctx)
}

// HandleExpiryScan processes TaskExpiryScan tasks: the cache version moves
// forward, then each shop's report is rebuilt so the first morning request
// hits a warm cache.
func (s *Scanner) HandleExpiryScan(ctx context.Context, t *asynq.Task) error {
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	runID := uuid.NewString()
	shops, err := s.shopIDs(ctx, payload)
	if err != nil {
		return err
	}
	if err := s.stock.InvalidateReports(ctx); err != nil {
		s.logger.Warn("bump report cache", slog.String("run_id", runID), slog.Any("error", err))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanParallelism)
	for _, shopID := range shops {
		g.Go(func() error {
			report, err := s.stock.ExpiryReport(ctx, shopID)
			if err != nil {
				return err
			}
			s.logger.Info("expiry scan",
				slog.String("run_id", runID),
				slog.Int64("shop_id", shopID),
				slog.Int("expired", len(report.Expired)),
				slog.Int("near_expiry", len(report.NearExpiry)))
			return nil
		})
	}
	return g.Wait()
}

// HandleLowStockScan processes TaskLowStockScan tasks.
func (s *Scanner) HandleLowStockScan(ctx context.Context, t *asynq.Task) error {
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	runID := uuid.NewString()
	shops, err := s.shopIDs(ctx, payload)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanParallelism)
	for _, shopID := range shops {
		g.Go(func() error {
			rows, err := s.stock.LowStock(ctx, shopID)
			if err != nil {
				return err
			}
			for _, row := range rows {
				s.logger.Warn("low stock",
					slog.String("run_id", runID),
					slog.Int64("shop_id", shopID),
					slog.Int64("product_id", row.ProductID),
					slog.String("product", row.ProductName),
					slog.Int64("stock", row.Stock))
			}
			return nil
		})
	}
	return g.Wait()
}
