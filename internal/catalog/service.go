package catalog

import "context"

const (
	defaultPageLimit = 100
	maxPageLimit     = 500
)

// Service exposes the shared catalog reads.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListProducts returns one catalog page. Page and limit are clamped to sane
// bounds.
func (s *Service) ListProducts(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Products: products, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// SyncShopProducts seeds zero-stock counters for catalog entries the shop
// does not track yet.
func (s *Service) SyncShopProducts(ctx context.Context, shopID int64) (SyncResult, error) {
	synced, err := s.repo.SyncShopProducts(ctx, shopID)
	if err != nil {
		return SyncResult{}, err
	}
	return SyncResult{Synced: synced}, nil
}
