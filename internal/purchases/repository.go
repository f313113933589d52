package purchases

import (
	"context"

	"github.com/pharmapos/pharmapos/internal/stock"
)

// TxRepository exposes the journal statements available inside one write
// transaction, together with the stock ledger for lot intake.
type TxRepository interface {
	stock.TxLedger

	InsertBill(ctx context.Context, bill Bill) (int64, error)
	InsertBillItem(ctx context.Context, item BillItem) (int64, error)
}

// RepositoryPort abstracts the purchase repository for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListBills(ctx context.Context, shopID int64) ([]Bill, error)
	GetBill(ctx context.Context, shopID, billID int64) (Bill, []BillItem, error)
}
