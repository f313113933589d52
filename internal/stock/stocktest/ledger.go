// Package stocktest provides an in-memory stock ledger for service tests.
package stocktest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pharmapos/pharmapos/internal/stock"
)

// MemoryLedger implements stock.TxLedger against maps. It is not safe for
// concurrent use; tests drive it sequentially.
type MemoryLedger struct {
	Aggregates map[string]stock.Aggregate
	Batches    []*stock.Batch
	nextID     int64
}

// NewMemoryLedger builds an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{Aggregates: make(map[string]stock.Aggregate)}
}

func key(shopID, productID int64) string {
	return fmt.Sprintf("%d:%d", shopID, productID)
}

// SeedAggregate installs a counter row directly.
func (m *MemoryLedger) SeedAggregate(agg stock.Aggregate) {
	m.Aggregates[key(agg.ShopID, agg.ProductID)] = agg
}

// SeedBatch installs a lot row directly and returns its id.
func (m *MemoryLedger) SeedBatch(b stock.Batch) int64 {
	m.nextID++
	b.ID = m.nextID
	copied := b
	m.Batches = append(m.Batches, &copied)
	return b.ID
}

// Aggregate returns the counter row for assertions.
func (m *MemoryLedger) Aggregate(shopID, productID int64) (stock.Aggregate, bool) {
	agg, ok := m.Aggregates[key(shopID, productID)]
	return agg, ok
}

// Batch returns the lot with the given id for assertions.
func (m *MemoryLedger) Batch(id int64) *stock.Batch {
	for _, b := range m.Batches {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (m *MemoryLedger) AggregateForUpdate(ctx context.Context, shopID, productID int64) (stock.Aggregate, error) {
	if agg, ok := m.Aggregates[key(shopID, productID)]; ok {
		return agg, nil
	}
	return stock.Aggregate{ShopID: shopID, ProductID: productID}, stock.ErrAggregateNotFound
}

func (m *MemoryLedger) UpsertAggregate(ctx context.Context, agg stock.Aggregate) error {
	agg.UpdatedAt = time.Now()
	m.Aggregates[key(agg.ShopID, agg.ProductID)] = agg
	return nil
}

func (m *MemoryLedger) OpenBatchesForUpdate(ctx context.Context, shopID, productID int64) ([]stock.Batch, error) {
	var open []stock.Batch
	for _, b := range m.Batches {
		if b.ShopID == shopID && b.ProductID == productID && b.Remaining() > 0 {
			open = append(open, *b)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		ei, ej := open[i].ExpiryDate, open[j].ExpiryDate
		switch {
		case ei == nil && ej == nil:
			return open[i].ID < open[j].ID
		case ei == nil:
			return false
		case ej == nil:
			return true
		case ei.Equal(*ej):
			return open[i].ID < open[j].ID
		default:
			return ei.Before(*ej)
		}
	})
	return open, nil
}

func (m *MemoryLedger) InsertBatch(ctx context.Context, batch stock.Batch) (int64, error) {
	batch.SoldQty = 0
	return m.SeedBatch(batch), nil
}

func (m *MemoryLedger) AddBatchSold(ctx context.Context, shopID, batchID, qty int64) error {
	for _, b := range m.Batches {
		if b.ID == batchID && b.ShopID == shopID {
			b.SoldQty += qty
			return nil
		}
	}
	return nil
}

func (m *MemoryLedger) ReduceBatchSoldByNo(ctx context.Context, shopID, productID int64, batchNo string, qty int64) error {
	if b := m.firstMatch(shopID, productID, batchNo); b != nil {
		b.SoldQty = max(b.SoldQty-qty, 0)
	}
	return nil
}

func (m *MemoryLedger) AddBatchSoldByNo(ctx context.Context, shopID, productID int64, batchNo string, qty int64) error {
	if b := m.firstMatch(shopID, productID, batchNo); b != nil {
		b.SoldQty += qty
	}
	return nil
}

func (m *MemoryLedger) ReduceBatchQtyByNo(ctx context.Context, shopID, productID int64, batchNo string, qty int64) error {
	if b := m.firstMatch(shopID, productID, batchNo); b != nil {
		b.Quantity = max(b.Quantity-qty, 0)
	}
	return nil
}

func (m *MemoryLedger) AddBatchQtyByNo(ctx context.Context, shopID, productID int64, batchNo string, qty int64) error {
	if b := m.firstMatch(shopID, productID, batchNo); b != nil {
		b.Quantity += qty
	}
	return nil
}

func (m *MemoryLedger) firstMatch(shopID, productID int64, batchNo string) *stock.Batch {
	for _, b := range m.Batches {
		if b.ShopID == shopID && b.ProductID == productID && b.BatchNo == batchNo {
			return b
		}
	}
	return nil
}
