package sales_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmapos/pharmapos/internal/sales"
	"github.com/pharmapos/pharmapos/internal/stock"
	"github.com/pharmapos/pharmapos/internal/stock/stocktest"
)

// memoryRepo backs the service with the in-memory stock ledger plus plain
// maps for the journal tables.
type memoryRepo struct {
	*stocktest.MemoryLedger
	sales      map[int64]sales.Sale
	items      map[int64][]sales.SaleItem
	nextSaleID int64
	nextItemID int64
	lastFilter sales.ListFilter
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		MemoryLedger: stocktest.NewMemoryLedger(),
		sales:        make(map[int64]sales.Sale),
		items:        make(map[int64][]sales.SaleItem),
	}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, sales.TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) LastSaleID(ctx context.Context, shopID int64) (int64, error) {
	var last int64
	for id, s := range m.sales {
		if s.ShopID == shopID && id > last {
			last = id
		}
	}
	return last, nil
}

func (m *memoryRepo) InsertSale(ctx context.Context, sale sales.Sale) (int64, error) {
	m.nextSaleID++
	sale.ID = m.nextSaleID
	m.sales[sale.ID] = sale
	return sale.ID, nil
}

func (m *memoryRepo) InsertSaleItem(ctx context.Context, item sales.SaleItem) error {
	m.nextItemID++
	item.ID = m.nextItemID
	m.items[item.SaleID] = append(m.items[item.SaleID], item)
	return nil
}

func (m *memoryRepo) ListSaleItems(ctx context.Context, shopID, saleID int64) ([]sales.SaleItem, error) {
	return m.items[saleID], nil
}

func (m *memoryRepo) DeleteSaleItems(ctx context.Context, shopID, saleID int64) error {
	delete(m.items, saleID)
	return nil
}

func (m *memoryRepo) DeleteSale(ctx context.Context, shopID, saleID int64) (bool, error) {
	if _, ok := m.sales[saleID]; !ok {
		return false, nil
	}
	delete(m.sales, saleID)
	return true, nil
}

func (m *memoryRepo) ListSales(ctx context.Context, shopID int64, filter sales.ListFilter) ([]sales.SaleSummary, error) {
	m.lastFilter = filter
	return []sales.SaleSummary{}, nil
}

func (m *memoryRepo) GetSale(ctx context.Context, shopID, saleID int64) (sales.Sale, []sales.SaleItem, error) {
	s, ok := m.sales[saleID]
	if !ok {
		return sales.Sale{}, nil, sales.ErrNotFound
	}
	return s, m.items[saleID], nil
}

// aggregateStock answers the availability pre-check from the ledger counters.
type aggregateStock struct {
	ledger *stocktest.MemoryLedger
}

func (a aggregateStock) Available(ctx context.Context, shopID, productID int64) (int64, error) {
	if agg, ok := a.ledger.Aggregate(shopID, productID); ok {
		return agg.Stock, nil
	}
	return 0, nil
}

func expDate(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func saleFixture() sales.CreateSaleRequest {
	return sales.CreateSaleRequest{
		Date:          "2025-03-10",
		BillType:      "GST",
		PaymentStatus: "Paid",
		PaymentMode:   "Cash",
		Items: []sales.SaleItemRequest{
			{
				ProductID:   7,
				ProductName: "Paracetamol 500mg",
				BatchNo:     "B1",
				Quantity:    2,
				Price:       50,
				MRP:         60,
				GSTRate:     5,
				Discount:    3,
			},
		},
	}
}

func TestCreateSaleAllocatesStockAndNumbersInvoice(t *testing.T) {
	repo := newMemoryRepo()
	repo.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 7, Stock: 10})
	batchID := repo.SeedBatch(stock.Batch{ShopID: 1, ProductID: 7, BatchNo: "B1", ExpiryDate: expDate("2027-01-01"), Quantity: 10})

	svc := sales.NewService(repo, aggregateStock{repo.MemoryLedger})
	result, err := svc.CreateSale(context.Background(), 1, saleFixture())
	require.NoError(t, err)

	wantInvoice := fmt.Sprintf("INV-1-%s-0001", time.Now().UTC().Format("20060102"))
	require.Equal(t, wantInvoice, result.InvoiceNumber)

	// qty 2 * rate 50 = 100 base, 5% GST, 3 flat discount, Paid forces full payment.
	require.InDelta(t, 100.0, result.Totals.SubTotal, 0.001)
	require.InDelta(t, 5.0, result.Totals.TotalGST, 0.001)
	require.InDelta(t, 3.0, result.Totals.Discount, 0.001)
	require.InDelta(t, 102.0, result.Totals.GrandTotal, 0.001)
	require.InDelta(t, 102.0, result.Totals.Paid, 0.001)
	require.InDelta(t, 0.0, result.Totals.Due, 0.001)

	agg, ok := repo.Aggregate(1, 7)
	require.True(t, ok)
	require.EqualValues(t, 8, agg.Stock)
	require.EqualValues(t, 2, repo.Batch(batchID).SoldQty)

	items, err := repo.ListSaleItems(context.Background(), 1, result.SaleID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.InDelta(t, 100.0, items[0].Amount, 0.001)
}

func TestCreateSaleRejectsInsufficientAggregate(t *testing.T) {
	repo := newMemoryRepo()
	repo.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 7, Stock: 1})
	repo.SeedBatch(stock.Batch{ShopID: 1, ProductID: 7, BatchNo: "B1", Quantity: 1})

	svc := sales.NewService(repo, aggregateStock{repo.MemoryLedger})
	_, err := svc.CreateSale(context.Background(), 1, saleFixture())
	require.ErrorIs(t, err, sales.ErrInsufficientStock)
	require.Empty(t, repo.sales)
	require.EqualValues(t, 0, repo.Batch(1).SoldQty)
}

func TestCreateSaleRejectsEmptyItems(t *testing.T) {
	repo := newMemoryRepo()
	svc := sales.NewService(repo, aggregateStock{repo.MemoryLedger})
	_, err := svc.CreateSale(context.Background(), 1, sales.CreateSaleRequest{Date: "2025-03-10"})
	require.ErrorIs(t, err, sales.ErrNoItems)
}

func TestCreateSaleUnpaidLeavesFullDue(t *testing.T) {
	repo := newMemoryRepo()
	repo.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 7, Stock: 10})
	repo.SeedBatch(stock.Batch{ShopID: 1, ProductID: 7, BatchNo: "B1", Quantity: 10})

	req := saleFixture()
	req.PaymentStatus = "Unpaid"
	req.PaidAmount = 40 // ignored for unpaid bills

	svc := sales.NewService(repo, aggregateStock{repo.MemoryLedger})
	result, err := svc.CreateSale(context.Background(), 1, req)
	require.NoError(t, err)
	require.InDelta(t, 0.0, result.Totals.Paid, 0.001)
	require.InDelta(t, 102.0, result.Totals.Due, 0.001)
}

func TestDeleteSaleRestoresLedger(t *testing.T) {
	repo := newMemoryRepo()
	repo.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 7, Stock: 10})
	batchID := repo.SeedBatch(stock.Batch{ShopID: 1, ProductID: 7, BatchNo: "B1", ExpiryDate: expDate("2027-01-01"), Quantity: 10})

	svc := sales.NewService(repo, aggregateStock{repo.MemoryLedger})
	result, err := svc.CreateSale(context.Background(), 1, saleFixture())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(context.Background(), 1, result.SaleID))

	agg, _ := repo.Aggregate(1, 7)
	require.EqualValues(t, 10, agg.Stock)
	require.EqualValues(t, 0, repo.Batch(batchID).SoldQty)
	require.Empty(t, repo.sales)
	require.Empty(t, repo.items)
}

func TestDeleteSaleUnknownID(t *testing.T) {
	repo := newMemoryRepo()
	svc := sales.NewService(repo, aggregateStock{repo.MemoryLedger})
	require.ErrorIs(t, svc.DeleteSale(context.Background(), 1, 99), sales.ErrNotFound)
}

func TestListSalesResolvesDateShortcut(t *testing.T) {
	repo := newMemoryRepo()
	svc := sales.NewService(repo, aggregateStock{repo.MemoryLedger})

	_, err := svc.ListSales(context.Background(), 1, sales.ListFilter{DateFilter: "yesterday"})
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.From)
	require.NotNil(t, repo.lastFilter.To)

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	require.Equal(t, yesterday.Format("2006-01-02"), repo.lastFilter.From.Format("2006-01-02"))
	require.Equal(t, yesterday.Format("2006-01-02"), repo.lastFilter.To.Format("2006-01-02"))
}
