package jobs_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmapos/pharmapos/internal/stock"
	"github.com/pharmapos/pharmapos/jobs"
)

type scanRepo struct {
	mu         sync.Mutex
	shopIDs    []int64
	expiryHits map[int64]int
	lowHits    map[int64]int
}

func newScanRepo(shopIDs ...int64) *scanRepo {
	return &scanRepo{
		shopIDs:    shopIDs,
		expiryHits: make(map[int64]int),
		lowHits:    make(map[int64]int),
	}
}

func (r *scanRepo) WithTx(ctx context.Context, fn func(context.Context, stock.TxLedger) error) error {
	return fn(ctx, nil)
}

func (r *scanRepo) GetAvailable(ctx context.Context, shopID, productID int64) (int64, error) {
	return 0, nil
}

func (r *scanRepo) GetAggregate(ctx context.Context, shopID, productID int64) (stock.Aggregate, error) {
	return stock.Aggregate{}, stock.ErrAggregateNotFound
}

func (r *scanRepo) ListCurrentStock(ctx context.Context, shopID int64) ([]stock.StockRow, error) {
	return nil, nil
}

func (r *scanRepo) ListSellableBatches(ctx context.Context, shopID, productID int64, today time.Time) ([]stock.BatchView, error) {
	return nil, nil
}

func (r *scanRepo) BatchRemaining(ctx context.Context, shopID, productID int64, batchNo string) (int64, error) {
	return 0, nil
}

func (r *scanRepo) ListExpiryRows(ctx context.Context, shopID int64, today time.Time) ([]stock.ExpiryRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expiryHits[shopID]++
	return []stock.ExpiryRow{}, nil
}

func (r *scanRepo) ListLowStock(ctx context.Context, shopID, threshold int64) ([]stock.LowStockRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lowHits[shopID]++
	return []stock.LowStockRow{{ProductID: 7, ProductName: "Paracetamol 500mg", Stock: 2}}, nil
}

func (r *scanRepo) ListShopIDs(ctx context.Context) ([]int64, error) {
	return r.shopIDs, nil
}

func newScanner(repo *scanRepo) *jobs.Scanner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return jobs.NewScanner(logger, stock.NewService(repo, nil))
}

func TestExpiryScanCoversEveryShop(t *testing.T) {
	repo := newScanRepo(1, 2, 3)
	scanner := newScanner(repo)

	task, err := jobs.NewExpiryScanTask(jobs.ScanPayload{})
	require.NoError(t, err)
	require.NoError(t, scanner.HandleExpiryScan(context.Background(), task))

	require.Equal(t, map[int64]int{1: 1, 2: 1, 3: 1}, repo.expiryHits)
}

func TestExpiryScanSingleShopPayload(t *testing.T) {
	repo := newScanRepo(1, 2, 3)
	scanner := newScanner(repo)

	task, err := jobs.NewExpiryScanTask(jobs.ScanPayload{ShopID: 2})
	require.NoError(t, err)
	require.NoError(t, scanner.HandleExpiryScan(context.Background(), task))

	require.Equal(t, map[int64]int{2: 1}, repo.expiryHits)
}

func TestLowStockScanCoversEveryShop(t *testing.T) {
	repo := newScanRepo(1, 2)
	scanner := newScanner(repo)

	task, err := jobs.NewLowStockScanTask(jobs.ScanPayload{})
	require.NoError(t, err)
	require.NoError(t, scanner.HandleLowStockScan(context.Background(), task))

	require.Equal(t, map[int64]int{1: 1, 2: 1}, repo.lowHits)
}
