package sales

import (
	"context"

	"github.com/pharmapos/pharmapos/internal/stock"
)

// TxRepository exposes the journal statements available inside one write
// transaction. It embeds the stock ledger so allocation and journal inserts
// commit or roll back together.
type TxRepository interface {
	stock.TxLedger

	// LastSaleID returns the highest sale id recorded for the shop, 0 when
	// none exist. Feeds the per-shop invoice sequence.
	LastSaleID(ctx context.Context, shopID int64) (int64, error)
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	InsertSaleItem(ctx context.Context, item SaleItem) error
	ListSaleItems(ctx context.Context, shopID, saleID int64) ([]SaleItem, error)
	DeleteSaleItems(ctx context.Context, shopID, saleID int64) error
	// DeleteSale removes the header and reports whether a row existed.
	DeleteSale(ctx context.Context, shopID, saleID int64) (bool, error)
}

// RepositoryPort abstracts the sales repository for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListSales(ctx context.Context, shopID int64, filter ListFilter) ([]SaleSummary, error)
	GetSale(ctx context.Context, shopID, saleID int64) (Sale, []SaleItem, error)
}
