package purchases

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmapos/pharmapos/internal/platform/db"
	"github.com/pharmapos/pharmapos/internal/stock"
)

// Repository persists the purchase journal in PostgreSQL.
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
		return errors.New("purchases repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{TxLedger: stock.NewTxLedger(tx), tx: tx})
	})
}

func (r *txRepository) InsertBill(ctx context.Context, bill Bill) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchase_bills (shop_id, supplier_id, invoice_no, invoice_date, bill_type, payment_status, payment_mode, paid_amount, due_amount, total_amount, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW()) RETURNING id`,
		bill.ShopID, bill.SupplierID, bill.InvoiceNo, bill.InvoiceDate, bill.BillType, bill.PaymentStatus, bill.PaymentMode, bill.PaidAmount, bill.DueAmount, bill.TotalAmount).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateInvoice
		}
		return 0, err
	}
	return id, nil
}

func (r *txRepository) InsertBillItem(ctx context.Context, item BillItem) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchase_items (shop_id, purchase_bill_id, product_id, product_name, batch_no, expiry_date, quantity, free_qty, unit, purchase_rate, mrp, gst_rate, discount, total, hsn_code, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,NOW()) RETURNING id`,
		item.ShopID, item.BillID, item.ProductID, item.ProductName, item.BatchNo, item.ExpiryDate, item.Quantity, item.FreeQty, item.Unit, item.PurchaseRate, item.MRP, item.GSTRate, item.Discount, item.Total, item.HSNCode).Scan(&id)
	return id, err
}

func (r *Repository) ListBills(ctx context.Context, shopID int64) ([]Bill, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.shop_id, p.supplier_id, p.invoice_no, p.invoice_date, p.bill_type, p.payment_status, p.payment_mode,
p.paid_amount, p.due_amount, p.total_amount, p.created_at, COALESCE(s.name, '')
FROM purchase_bills p
LEFT JOIN suppliers s ON s.id = p.supplier_id
WHERE p.shop_id = $1
ORDER BY p.id DESC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bills := []Bill{}
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.ID, &b.ShopID, &b.SupplierID, &b.InvoiceNo, &b.InvoiceDate, &b.BillType, &b.PaymentStatus, &b.PaymentMode,
			&b.PaidAmount, &b.DueAmount, &b.TotalAmount, &b.CreatedAt, &b.SupplierName); err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (r *Repository) GetBill(ctx context.Context, shopID, billID int64) (Bill, []BillItem, error) {
	var b Bill
	err := r.pool.QueryRow(ctx, `SELECT p.id, p.shop_id, p.supplier_id, p.invoice_no, p.invoice_date, p.bill_type, p.payment_status, p.payment_mode,
p.paid_amount, p.due_amount, p.total_amount, p.created_at, COALESCE(s.name, '')
FROM purchase_bills p
LEFT JOIN suppliers s ON s.id = p.supplier_id
WHERE p.id = $1 AND p.shop_id = $2`, billID, shopID).
		Scan(&b.ID, &b.ShopID, &b.SupplierID, &b.InvoiceNo, &b.InvoiceDate, &b.BillType, &b.PaymentStatus, &b.PaymentMode,
			&b.PaidAmount, &b.DueAmount, &b.TotalAmount, &b.CreatedAt, &b.SupplierName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bill{}, nil, ErrNotFound
	}
	if err != nil {
		return Bill{}, nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, shop_id, purchase_bill_id, product_id, product_name, batch_no, expiry_date, quantity, free_qty, unit, purchase_rate, mrp, gst_rate, discount, total, COALESCE(hsn_code, '')
FROM purchase_items
WHERE purchase_bill_id = $1 AND shop_id = $2
ORDER BY id ASC`, billID, shopID)
	if err != nil {
		return Bill{}, nil, err
	}
	defer rows.Close()
	items := []BillItem{}
	for rows.Next() {
		var it BillItem
		if err := rows.Scan(&it.ID, &it.ShopID, &it.BillID, &it.ProductID, &it.ProductName, &it.BatchNo, &it.ExpiryDate, &it.Quantity, &it.FreeQty, &it.Unit, &it.PurchaseRate, &it.MRP, &it.GSTRate, &it.Discount, &it.Total, &it.HSNCode); err != nil {
			return Bill{}, nil, err
		}
		items = append(items, it)
	}
	return b, items, rows.Err()
}
