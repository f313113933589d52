package stock

import (
	"context"
	"time"
)

// TxLedger exposes the ledger mutations available inside a write transaction.
// Journal repositories embed it so sale, purchase and return handlers can run
// stock movements atomically with their own inserts and deletes.
type TxLedger interface {
	// AggregateForUpdate locks and returns the shop's counter row, or
	// ErrAggregateNotFound when the product was never stocked here.
	AggregateForUpdate(ctx context.Context, shopID, productID int64) (Aggregate, error)
	UpsertAggregate(ctx context.Context, agg Aggregate) error

	// OpenBatchesForUpdate locks and returns batches with remaining quantity,
	// earliest expiry first; batches without an expiry date sort last.
	OpenBatchesForUpdate(ctx context.Context, shopID, productID int64) ([]Batch, error)
	InsertBatch(ctx context.Context, batch Batch) (int64, error)

	// AddBatchSold increments sold_qty on one batch row.
	AddBatchSold(ctx context.Context, shopID, batchID, qty int64) error

	// ReduceBatchSoldByNo decrements sold_qty, floored at zero, on the first
	// batch matching (product, batch no).
	ReduceBatchSoldByNo(ctx context.Context, shopID, productID int64, batchNo string, qty int64) error
	// AddBatchSoldByNo re-increments sold_qty on the first matching batch.
	AddBatchSoldByNo(ctx context.Context, shopID, productID int64, batchNo string, qty int64) error
	// ReduceBatchQtyByNo shrinks the lot itself, floored at zero, on the first
	// matching batch (stock going back to the supplier).
	ReduceBatchQtyByNo(ctx context.Context, shopID, productID int64, batchNo string, qty int64) error
	// AddBatchQtyByNo grows the lot back on the first matching batch.
	AddBatchQtyByNo(ctx context.Context, shopID, productID int64, batchNo string, qty int64) error
}

// RepositoryPort abstracts the stock repository for the service layer.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxLedger) error) error

	GetAvailable(ctx context.Context, shopID, productID int64) (int64, error)
	GetAggregate(ctx context.Context, shopID, productID int64) (Aggregate, error)
	ListCurrentStock(ctx context.Context, shopID int64) ([]StockRow, error)
	ListSellableBatches(ctx context.Context, shopID, productID int64, today time.Time) ([]BatchView, error)
	BatchRemaining(ctx context.Context, shopID, productID int64, batchNo string) (int64, error)
	ListExpiryRows(ctx context.Context, shopID int64, today time.Time) ([]ExpiryRow, error)
	ListLowStock(ctx context.Context, shopID, threshold int64) ([]LowStockRow, error)

	// ListShopIDs returns every shop with at least one counter row. Background
	// scans iterate over it.
	ListShopIDs(ctx context.Context) ([]int64, error)
}
