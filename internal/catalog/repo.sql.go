package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the product master from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productFrom = `
FROM product_master p
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN manufacturers m ON m.id = p.manufacturer_id
LEFT JOIN units u ON u.id = p.unit_id`

func (r *Repository) ListProducts(ctx context.Context, filter ListFilter) ([]Product, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND p.name ILIKE $%d`, len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(` AND c.name = $%d`, len(args))
	}
	if filter.Manufacturer != "" {
		args = append(args, filter.Manufacturer)
		where += fmt.Sprintf(` AND m.name = $%d`, len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+productFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := `SELECT p.id, p.name, COALESCE(p.hsn_code, ''), COALESCE(p.gst_rate, 0), COALESCE(p.pack_size, ''), p.created_at,
COALESCE(c.name, ''), COALESCE(m.name, ''), COALESCE(u.name, '')` +
		productFrom + where + fmt.Sprintf(` ORDER BY p.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.HSNCode, &p.GSTRate, &p.PackSize, &p.CreatedAt, &p.Category, &p.Manufacturer, &p.Unit); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// syncShopProductsSQL opens zero-stock aggregate rows. The column list must
// stay in step with the ledger upserts that maintain shop_products.
const syncShopProductsSQL = `INSERT INTO shop_products (shop_id, product_id, stock, purchase_rate, mrp, last_updated)
SELECT $1, p.id, 0, 0, 0, NOW()
FROM product_master p
WHERE NOT EXISTS (
	SELECT 1 FROM shop_products sp WHERE sp.shop_id = $1 AND sp.product_id = p.id
)`

func (r *Repository) SyncShopProducts(ctx context.Context, shopID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, syncShopProductsSQL, shopID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
