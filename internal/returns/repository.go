package returns

import (
	"context"

	"github.com/pharmapos/pharmapos/internal/stock"
)

// TxRepository exposes the journal statements available inside one write
// transaction, with the stock ledger for reversals.
type TxRepository interface {
	stock.TxLedger

	InsertReturn(ctx context.Context, ret Return) (int64, error)
	InsertReturnItem(ctx context.Context, item ReturnItem) error
	// ReturnType reports the stored discriminator, ErrNotFound when the row
	// does not exist in this shop.
	ReturnType(ctx context.Context, shopID, returnID int64) (string, error)
	ListReturnItems(ctx context.Context, shopID, returnID int64) ([]ReturnItem, error)
	DeleteReturnItems(ctx context.Context, shopID, returnID int64) error
	DeleteReturn(ctx context.Context, shopID, returnID int64) error
}

// RepositoryPort abstracts the returns repository for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListReturns(ctx context.Context, shopID int64, returnType string) ([]Return, error)
	GetReturn(ctx context.Context, shopID, returnID int64, returnType string) (Return, []ReturnItem, error)
}
