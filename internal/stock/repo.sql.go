package stock

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmapos/pharmapos/internal/platform/db"
)

// Repository persists the stock ledger in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxLedger) error) error {
	if r == nil {
		return errors.New("stock repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewTxLedger(tx))
	})
}

// txLedger implements TxLedger over one pgx transaction.
type txLedger struct {
	tx pgx.Tx
}

// NewTxLedger wraps an open transaction so journal repositories can embed the
// ledger operations next to their own statements.
func NewTxLedger(tx pgx.Tx) TxLedger {
	return &txLedger{tx: tx}
}

func (l *txLedger) AggregateForUpdate(ctx context.Context, shopID, productID int64) (Aggregate, error) {
	var agg Aggregate
	err := l.tx.QueryRow(ctx, `SELECT shop_id, product_id, stock, purchase_rate, mrp, last_updated
FROM shop_products WHERE shop_id=$1 AND product_id=$2 FOR UPDATE`, shopID, productID).
		Scan(&agg.ShopID, &agg.ProductID, &agg.Stock, &agg.PurchaseRate, &agg.MRP, &agg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Aggregate{ShopID: shopID, ProductID: productID}, ErrAggregateNotFound
		}
		return Aggregate{}, err
	}
	return agg, nil
}

func (l *txLedger) UpsertAggregate(ctx context.Context, agg Aggregate) error {
	_, err := l.tx.Exec(ctx, `INSERT INTO shop_products (shop_id, product_id, stock, purchase_rate, mrp, last_updated)
VALUES ($1,$2,$3,$4,$5,NOW())
ON CONFLICT (shop_id, product_id) DO UPDATE SET stock=EXCLUDED.stock, purchase_rate=EXCLUDED.purchase_rate, mrp=EXCLUDED.mrp, last_updated=NOW()`,
		agg.ShopID, agg.ProductID, agg.Stock, agg.PurchaseRate, agg.MRP)
	return err
}

func (l *txLedger) OpenBatchesForUpdate(ctx context.Context, shopID, productID int64) ([]Batch, error) {
	rows, err := l.tx.Query(ctx, `SELECT id, shop_id, product_id, batch_no, expiry_date, quantity, sold_qty, purchase_rate, mrp, COALESCE(purchase_bill_id, 0)
FROM stock_batches
WHERE shop_id=$1 AND product_id=$2 AND quantity - sold_qty > 0
ORDER BY COALESCE(expiry_date, 'infinity'::date) ASC, id ASC
FOR UPDATE`, shopID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.ShopID, &b.ProductID, &b.BatchNo, &b.ExpiryDate, &b.Quantity, &b.SoldQty, &b.PurchaseRate, &b.MRP, &b.BillID); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (l *txLedger) InsertBatch(ctx context.Context, batch Batch) (int64, error) {
	var id int64
	err := l.tx.QueryRow(ctx, `INSERT INTO stock_batches (shop_id, product_id, batch_no, expiry_date, quantity, sold_qty, purchase_rate, mrp, purchase_bill_id, created_at)
VALUES ($1,$2,$3,$4,$5,0,$6,$7,$8,NOW()) RETURNING id`,
		batch.ShopID, batch.ProductID, batch.BatchNo, batch.ExpiryDate, batch.Quantity, batch.PurchaseRate, batch.MRP, nullInt(batch.BillID)).Scan(&id)
	return id, err
}

func (l *txLedger) AddBatchSold(ctx context.Context, shopID, batchID, qty int64) error {
	_, err := l.tx.Exec(ctx, `UPDATE stock_batches SET sold_qty = sold_qty + $1 WHERE id=$2 AND shop_id=$3`, qty, batchID, shopID)
	return err
}

func (l *txLedger) ReduceBatchSoldByNo(ctx context.Context, shopID, productID int64, batchNo string, qty int64) error {
	return l.updateFirstMatch(ctx, `sold_qty = GREATEST(sold_qty - $1, 0)`, shopID, productID, batchNo, qty)
}

func (l *txLedger) AddBatchSoldByNo(ctx context.Context, shopID, productID int64, batchNo string, qty int64) error {
	return l.updateFirstMatch(ctx, `sold_qty = sold_qty + $1`, shopID, productID, batchNo, qty)
}

func (l *txLedger) ReduceBatchQtyByNo(ctx context.Context, shopID, productID int64, batchNo string, qty int64) error {
	return l.updateFirstMatch(ctx, `quantity = GREATEST(quantity - $1, 0)`, shopID, productID, batchNo, qty)
}

func (l *txLedger) AddBatchQtyByNo(ctx context.Context, shopID, productID int64, batchNo string, qty int64) error {
	return l.updateFirstMatch(ctx, `quantity = quantity + $1`, shopID, productID, batchNo, qty)
}

// updateFirstMatch applies a quantity mutation to the oldest batch matching
// (product, batch no). Sale items record only the batch number string, so
// reversal targets the first match rather than an exact lot.
func (l *txLedger) updateFirstMatch(ctx context.Context, set string, shopID, productID int64, batchNo string, qty int64) error {
	_, err := l.tx.Exec(ctx, `UPDATE stock_batches SET `+set+` WHERE id = (
SELECT id FROM stock_batches WHERE shop_id=$2 AND product_id=$3 AND batch_no=$4 ORDER BY id ASC LIMIT 1)`,
		qty, shopID, productID, batchNo)
	return err
}

func (r *Repository) GetAvailable(ctx context.Context, shopID, productID int64) (int64, error) {
	var stock int64
	err := r.pool.QueryRow(ctx, `SELECT stock FROM shop_products WHERE shop_id=$1 AND product_id=$2`, shopID, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

func (r *Repository) GetAggregate(ctx context.Context, shopID, productID int64) (Aggregate, error) {
	var agg Aggregate
	err := r.pool.QueryRow(ctx, `SELECT shop_id, product_id, stock, purchase_rate, mrp, last_updated
FROM shop_products WHERE shop_id=$1 AND product_id=$2`, shopID, productID).
		Scan(&agg.ShopID, &agg.ProductID, &agg.Stock, &agg.PurchaseRate, &agg.MRP, &agg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Aggregate{}, ErrAggregateNotFound
	}
	return agg, err
}

func (r *Repository) ListCurrentStock(ctx context.Context, shopID int64) ([]StockRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, COALESCE(p.hsn_code, '-'), COALESCE(p.gst_rate, 0),
COALESCE(sp.stock, 0), COALESCE(sp.purchase_rate, 0), COALESCE(sp.mrp, 0), sp.last_updated
FROM product_master p
LEFT JOIN shop_products sp ON sp.product_id = p.id AND sp.shop_id = $1
ORDER BY p.name ASC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []StockRow{}
	for rows.Next() {
		var row StockRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.HSN, &row.GSTRate, &row.Qty, &row.PurchaseRate, &row.MRP, &row.LastUpdated); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *Repository) ListSellableBatches(ctx context.Context, shopID, productID int64, today time.Time) ([]BatchView, error) {
	rows, err := r.pool.Query(ctx, `SELECT b.batch_no, b.expiry_date, b.quantity - b.sold_qty, b.purchase_rate, b.mrp,
COALESCE(p.pack_size, '-'), COALESCE(p.hsn_code, '-'), COALESCE(p.gst_rate, 0)
FROM stock_batches b
LEFT JOIN product_master p ON p.id = b.product_id
WHERE b.shop_id=$1 AND b.product_id=$2
  AND b.quantity - b.sold_qty > 0
  AND (b.expiry_date IS NULL OR b.expiry_date >= $3)
ORDER BY COALESCE(b.expiry_date, 'infinity'::date) ASC, b.id ASC`, shopID, productID, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := []BatchView{}
	for rows.Next() {
		var v BatchView
		if err := rows.Scan(&v.BatchNo, &v.ExpiryDate, &v.AvailableQty, &v.PurchaseRate, &v.MRP, &v.Pack, &v.HSN, &v.GSTRate); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *Repository) BatchRemaining(ctx context.Context, shopID, productID int64, batchNo string) (int64, error) {
	var remaining int64
	err := r.pool.QueryRow(ctx, `SELECT quantity - sold_qty FROM stock_batches
WHERE shop_id=$1 AND product_id=$2 AND batch_no=$3 ORDER BY id ASC LIMIT 1`, shopID, productID, batchNo).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *Repository) ListExpiryRows(ctx context.Context, shopID int64, today time.Time) ([]ExpiryRow, error) {
	horizon := today.Add(NearExpiryWindow)
	rows, err := r.pool.Query(ctx, `SELECT b.product_id, COALESCE(p.name, ''), b.batch_no, b.expiry_date,
b.quantity - b.sold_qty, b.mrp, b.purchase_rate, COALESCE(p.hsn_code, '-'), COALESCE(p.gst_rate, 0), COALESCE(s.name, ''),
CASE WHEN b.expiry_date < $2 THEN 'expired' ELSE 'near' END
FROM stock_batches b
LEFT JOIN product_master p ON p.id = b.product_id
LEFT JOIN purchase_bills pb ON pb.id = b.purchase_bill_id
LEFT JOIN suppliers s ON s.id = pb.supplier_id
WHERE b.shop_id=$1
  AND b.expiry_date IS NOT NULL
  AND b.quantity - b.sold_qty > 0
  AND b.expiry_date <= $3
ORDER BY b.expiry_date ASC`, shopID, today, horizon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ExpiryRow{}
	for rows.Next() {
		var row ExpiryRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.BatchNo, &row.ExpiryDate, &row.Qty, &row.MRP, &row.PurchaseRate, &row.HSN, &row.GSTRate, &row.SupplierName, &row.Status); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *Repository) ListLowStock(ctx context.Context, shopID, threshold int64) ([]LowStockRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, COALESCE(p.hsn_code, '-'), COALESCE(p.gst_rate, 0),
sp.stock, COALESCE(sp.purchase_rate, 0), COALESCE(sp.mrp, 0),
COALESCE(to_char((SELECT MIN(b.expiry_date) FROM stock_batches b WHERE b.shop_id = sp.shop_id AND b.product_id = p.id), 'MM/YY'), '-')
FROM shop_products sp
JOIN product_master p ON p.id = sp.product_id
WHERE sp.shop_id=$1 AND sp.stock <= $2
ORDER BY sp.stock ASC, p.name ASC`, shopID, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []LowStockRow{}
	for rows.Next() {
		var row LowStockRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.HSN, &row.GSTRate, &row.Stock, &row.PurchaseRate, &row.MRP, &row.Expiry); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *Repository) ListShopIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT shop_id FROM shop_products ORDER BY shop_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
