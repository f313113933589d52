package catalog

import "context"

// RepositoryPort abstracts catalog storage for the service.
type RepositoryPort interface {
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, int64, error)
	// SyncShopProducts inserts zero-stock counter rows for catalog products
	// the shop does not track yet and reports how many were created.
	SyncShopProducts(ctx context.Context, shopID int64) (int64, error)
}
