package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmapos/pharmapos/internal/platform/db"
	"github.com/pharmapos/pharmapos/internal/stock"
)

// Repository persists the sale journal in PostgreSQL.
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

// WithTx executes the callback inside a repeatable-read transaction. The
// wrapper carries the stock ledger so allocations share the transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("sales repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{TxLedger: stock.NewTxLedger(tx), tx: tx})
	})
}

func (r *txRepository) LastSaleID(ctx context.Context, shopID int64) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM sales WHERE shop_id=$1`, shopID).Scan(&id)
	return id, err
}

func (r *txRepository) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sales (shop_id, invoice_number, customer_id, date, bill_type, payment_status, payment_mode, paid_amount, due_amount, total, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW()) RETURNING id`,
		sale.ShopID, sale.InvoiceNumber, sale.CustomerID, sale.Date, sale.BillType, sale.PaymentStatus, sale.PaymentMode, sale.PaidAmount, sale.DueAmount, sale.Total).Scan(&id)
	return id, err
}

func (r *txRepository) InsertSaleItem(ctx context.Context, item SaleItem) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO sales_items (shop_id, sale_id, product_id, product_name, hsn, batch_no, expiry_date, unit, qty, rate, mrp, gst, disc, amount, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,NOW())`,
		item.ShopID, item.SaleID, item.ProductID, item.ProductName, item.HSN, item.BatchNo, item.ExpiryDate, item.Unit, item.Qty, item.Rate, item.MRP, item.GSTRate, item.Discount, item.Amount)
	return err
}

func (r *txRepository) ListSaleItems(ctx context.Context, shopID, saleID int64) ([]SaleItem, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, shop_id, sale_id, product_id, product_name, hsn, batch_no, expiry_date, unit, qty, rate, mrp, gst, disc, amount
FROM sales_items WHERE sale_id=$1 AND shop_id=$2 ORDER BY id ASC`, saleID, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSaleItems(rows)
}

func (r *txRepository) DeleteSaleItems(ctx context.Context, shopID, saleID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM sales_items WHERE sale_id=$1 AND shop_id=$2`, saleID, shopID)
	return err
}

func (r *txRepository) DeleteSale(ctx context.Context, shopID, saleID int64) (bool, error) {
	tag, err := r.tx.Exec(ctx, `DELETE FROM sales WHERE id=$1 AND shop_id=$2`, saleID, shopID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) ListSales(ctx context.Context, shopID int64, filter ListFilter) ([]SaleSummary, error) {
	query := `SELECT s.id, s.invoice_number, s.date, s.created_at, s.bill_type, s.payment_mode,
COALESCE(c.name, ''), s.total, s.paid_amount, s.due_amount, s.payment_status
FROM sales s
LEFT JOIN customers c ON c.id = s.customer_id
WHERE s.shop_id = $1`
	args := []any{shopID}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		query += fmt.Sprintf(` AND (s.invoice_number ILIKE $%d OR c.name ILIKE $%d)`, len(args), len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND s.payment_status = $%d`, len(args))
	}
	if filter.From != nil && filter.To != nil {
		args = append(args, *filter.From, *filter.To)
		query += fmt.Sprintf(` AND s.date BETWEEN $%d AND $%d`, len(args)-1, len(args))
	}
	query += ` ORDER BY s.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sales := []SaleSummary{}
	for rows.Next() {
		var s SaleSummary
		if err := rows.Scan(&s.ID, &s.InvoiceNumber, &s.Date, &s.CreatedAt, &s.BillType, &s.PaymentMode, &s.CustomerName, &s.Total, &s.PaidAmount, &s.DueAmount, &s.PaymentStatus); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (r *Repository) GetSale(ctx context.Context, shopID, saleID int64) (Sale, []SaleItem, error) {
	var sale Sale
	err := r.pool.QueryRow(ctx, `SELECT s.id, s.shop_id, s.invoice_number, s.customer_id, s.date, s.bill_type, s.payment_status, s.payment_mode,
s.paid_amount, s.due_amount, s.total, s.created_at, COALESCE(c.name, ''), COALESCE(c.phone, ''), COALESCE(c.address, '')
FROM sales s
LEFT JOIN customers c ON c.id = s.customer_id
WHERE s.id=$1 AND s.shop_id=$2`, saleID, shopID).
		Scan(&sale.ID, &sale.ShopID, &sale.InvoiceNumber, &sale.CustomerID, &sale.Date, &sale.BillType, &sale.PaymentStatus, &sale.PaymentMode,
			&sale.PaidAmount, &sale.DueAmount, &sale.Total, &sale.CreatedAt, &sale.CustomerName, &sale.CustomerPhone, &sale.CustomerAddress)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, nil, ErrNotFound
	}
	if err != nil {
		return Sale{}, nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, shop_id, sale_id, product_id, product_name, hsn, batch_no, expiry_date, unit, qty, rate, mrp, gst, disc, amount
FROM sales_items WHERE sale_id=$1 AND shop_id=$2 ORDER BY id ASC`, saleID, shopID)
	if err != nil {
		return Sale{}, nil, err
	}
	defer rows.Close()
	items, err := scanSaleItems(rows)
	if err != nil {
		return Sale{}, nil, err
	}
	return sale, items, nil
}

func scanSaleItems(rows pgx.Rows) ([]SaleItem, error) {
	items := []SaleItem{}
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.ShopID, &it.SaleID, &it.ProductID, &it.ProductName, &it.HSN, &it.BatchNo, &it.ExpiryDate, &it.Unit, &it.Qty, &it.Rate, &it.MRP, &it.GSTRate, &it.Discount, &it.Amount); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
