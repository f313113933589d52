package returns

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmapos/pharmapos/internal/platform/db"
	"github.com/pharmapos/pharmapos/internal/stock"
)

// Repository persists both return journals in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	stock.TxLedger
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("returns repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{TxLedger: stock.NewTxLedger(tx), tx: tx})
	})
}

func (r *txRepository) InsertReturn(ctx context.Context, ret Return) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO returns (shop_id, return_type, reference_no, customer_id, supplier_id, date, reason, total, remarks, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW()) RETURNING id`,
		ret.ShopID, ret.Type, ret.ReferenceNo, ret.CustomerID, ret.SupplierID, ret.Date, ret.Reason, ret.Total, ret.Remarks).Scan(&id)
	return id, err
}

func (r *txRepository) InsertReturnItem(ctx context.Context, item ReturnItem) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO return_items (shop_id, return_id, product_id, batch_no, qty, rate, gst, amount, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())`,
		item.ShopID, item.ReturnID, item.ProductID, item.BatchNo, item.Qty, item.Rate, item.GSTRate, item.Amount)
	return err
}

func (r *txRepository) ReturnType(ctx context.Context, shopID, returnID int64) (string, error) {
	var returnType string
	err := r.tx.QueryRow(ctx, `SELECT return_type FROM returns WHERE id=$1 AND shop_id=$2`, returnID, shopID).Scan(&returnType)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return returnType, err
}

func (r *txRepository) ListReturnItems(ctx context.Context, shopID, returnID int64) ([]ReturnItem, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, shop_id, return_id, product_id, batch_no, qty, rate, gst, amount
FROM return_items WHERE return_id=$1 AND shop_id=$2 ORDER BY id ASC`, returnID, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReturnItems(rows)
}

func (r *txRepository) DeleteReturnItems(ctx context.Context, shopID, returnID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM return_items WHERE return_id=$1 AND shop_id=$2`, returnID, shopID)
	return err
}

func (r *txRepository) DeleteReturn(ctx context.Context, shopID, returnID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM returns WHERE id=$1 AND shop_id=$2`, returnID, shopID)
	return err
}

func (r *Repository) ListReturns(ctx context.Context, shopID int64, returnType string) ([]Return, error) {
	rows, err := r.pool.Query(ctx, `SELECT r.id, r.shop_id, r.return_type, r.reference_no, r.customer_id, r.supplier_id, r.date, r.reason, r.total, r.remarks, r.created_at,
COALESCE(c.name, s.name, '')
FROM returns r
LEFT JOIN customers c ON c.id = r.customer_id
LEFT JOIN suppliers s ON s.id = r.supplier_id
WHERE r.shop_id = $1 AND r.return_type = $2
ORDER BY r.id DESC`, shopID, returnType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Return{}
	for rows.Next() {
		var ret Return
		if err := rows.Scan(&ret.ID, &ret.ShopID, &ret.Type, &ret.ReferenceNo, &ret.CustomerID, &ret.SupplierID, &ret.Date, &ret.Reason, &ret.Total, &ret.Remarks, &ret.CreatedAt, &ret.PartyName); err != nil {
			return nil, err
		}
		out = append(out, ret)
	}
	return out, rows.Err()
}

func (r *Repository) GetReturn(ctx context.Context, shopID, returnID int64, returnType string) (Return, []ReturnItem, error) {
	var ret Return
	err := r.pool.QueryRow(ctx, `SELECT r.id, r.shop_id, r.return_type, r.reference_no, r.customer_id, r.supplier_id, r.date, r.reason, r.total, r.remarks, r.created_at,
COALESCE(c.name, s.name, ''), COALESCE(c.phone, s.phone, '')
FROM returns r
LEFT JOIN customers c ON c.id = r.customer_id
LEFT JOIN suppliers s ON s.id = r.supplier_id
WHERE r.id = $1 AND r.shop_id = $2 AND r.return_type = $3`, returnID, shopID, returnType).
		Scan(&ret.ID, &ret.ShopID, &ret.Type, &ret.ReferenceNo, &ret.CustomerID, &ret.SupplierID, &ret.Date, &ret.Reason, &ret.Total, &ret.Remarks, &ret.CreatedAt, &ret.PartyName, &ret.PartyPhone)
	if errors.Is(err, pgx.ErrNoRows) {
		return Return{}, nil, ErrNotFound
	}
	if err != nil {
		return Return{}, nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, shop_id, return_id, product_id, batch_no, qty, rate, gst, amount
FROM return_items WHERE return_id=$1 AND shop_id=$2 ORDER BY id ASC`, returnID, shopID)
	if err != nil {
		return Return{}, nil, err
	}
	defer rows.Close()
	items, err := scanReturnItems(rows)
	if err != nil {
		return Return{}, nil, err
	}
	return ret, items, nil
}

func scanReturnItems(rows pgx.Rows) ([]ReturnItem, error) {
	items := []ReturnItem{}
	for rows.Next() {
		var it ReturnItem
		if err := rows.Scan(&it.ID, &it.ShopID, &it.ReturnID, &it.ProductID, &it.BatchNo, &it.Qty, &it.Rate, &it.GSTRate, &it.Amount); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
