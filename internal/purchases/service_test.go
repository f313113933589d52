package purchases_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmapos/pharmapos/internal/purchases"
	"github.com/pharmapos/pharmapos/internal/stock"
	"github.com/pharmapos/pharmapos/internal/stock/stocktest"
)

type memoryRepo struct {
	*stocktest.MemoryLedger
	bills      map[int64]purchases.Bill
	items      map[int64][]purchases.BillItem
	invoices   map[string]bool
	nextBillID int64
	nextItemID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		MemoryLedger: stocktest.NewMemoryLedger(),
		bills:        make(map[int64]purchases.Bill),
		items:        make(map[int64][]purchases.BillItem),
		invoices:     make(map[string]bool),
	}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, purchases.TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) InsertBill(ctx context.Context, bill purchases.Bill) (int64, error) {
	if m.invoices[bill.InvoiceNo] {
		return 0, purchases.ErrDuplicateInvoice
	}
	m.invoices[bill.InvoiceNo] = true
	m.nextBillID++
	bill.ID = m.nextBillID
	m.bills[bill.ID] = bill
	return bill.ID, nil
}

func (m *memoryRepo) InsertBillItem(ctx context.Context, item purchases.BillItem) (int64, error) {
	m.nextItemID++
	item.ID = m.nextItemID
	m.items[item.BillID] = append(m.items[item.BillID], item)
	return item.ID, nil
}

func (m *memoryRepo) ListBills(ctx context.Context, shopID int64) ([]purchases.Bill, error) {
	out := []purchases.Bill{}
	for _, b := range m.bills {
		if b.ShopID == shopID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memoryRepo) GetBill(ctx context.Context, shopID, billID int64) (purchases.Bill, []purchases.BillItem, error) {
	b, ok := m.bills[billID]
	if !ok || b.ShopID != shopID {
		return purchases.Bill{}, nil, purchases.ErrNotFound
	}
	return b, m.items[billID], nil
}

func billFixture() purchases.CreateBillRequest {
	expiry := "2027-06-01"
	return purchases.CreateBillRequest{
		SupplierID:    3,
		InvoiceNo:     "SUP-2205",
		InvoiceDate:   "2025-03-01",
		PaymentStatus: "Paid",
		PaymentMode:   "Cash",
		Items: []purchases.BillItemRequest{
			{
				ProductID:    7,
				ProductName:  "Paracetamol 500mg",
				BatchNo:      "B9",
				ExpiryDate:   &expiry,
				Quantity:     100,
				FreeQty:      10,
				PurchaseRate: 8,
				MRP:          12,
				GSTRate:      12,
				Discount:     5,
			},
		},
	}
}

func TestCreateBillOpensLotAndGrowsCounter(t *testing.T) {
	repo := newMemoryRepo()
	svc := purchases.NewService(repo)

	result, err := svc.CreateBill(context.Background(), 1, billFixture())
	require.NoError(t, err)
	require.Equal(t, 1, result.ItemsCount)

	// base 800, GST 12% = 96, discount 5% = 40 → grand 856, Paid forces full.
	require.InDelta(t, 800.0, result.Totals.SubTotal, 0.001)
	require.InDelta(t, 96.0, result.Totals.TotalGST, 0.001)
	require.InDelta(t, 40.0, result.Totals.Discount, 0.001)
	require.InDelta(t, 856.0, result.Totals.GrandTotal, 0.001)
	require.InDelta(t, 856.0, result.Totals.Paid, 0.001)
	require.InDelta(t, 0.0, result.Totals.Due, 0.001)

	agg, ok := repo.Aggregate(1, 7)
	require.True(t, ok)
	require.EqualValues(t, 100, agg.Stock)
	require.InDelta(t, 8.0, agg.PurchaseRate, 0.001)
	require.InDelta(t, 12.0, agg.MRP, 0.001)

	require.Len(t, repo.Batches, 1)
	lot := repo.Batches[0]
	require.Equal(t, "B9", lot.BatchNo)
	require.EqualValues(t, 100, lot.Quantity)
	require.Equal(t, result.BillID, lot.BillID)
	require.Equal(t, "2027-06-01", lot.ExpiryDate.Format("2006-01-02"))

	items := repo.items[result.BillID]
	require.Len(t, items, 1)
	require.EqualValues(t, 10, items[0].FreeQty)
	require.InDelta(t, 856.0, items[0].Total, 0.001)
}

func TestCreateBillUnpaidKeepsFullDue(t *testing.T) {
	repo := newMemoryRepo()
	svc := purchases.NewService(repo)

	req := billFixture()
	req.PaymentStatus = "Unpaid"
	req.PaidAmount = 500 // ignored for unpaid bills

	result, err := svc.CreateBill(context.Background(), 1, req)
	require.NoError(t, err)
	require.InDelta(t, 0.0, result.Totals.Paid, 0.001)
	require.InDelta(t, 856.0, result.Totals.Due, 0.001)
}

func TestCreateBillRejectsEmptyItems(t *testing.T) {
	repo := newMemoryRepo()
	svc := purchases.NewService(repo)
	_, err := svc.CreateBill(context.Background(), 1, purchases.CreateBillRequest{SupplierID: 3, InvoiceNo: "X"})
	require.ErrorIs(t, err, purchases.ErrNoItems)
}

func TestCreateBillDuplicateInvoice(t *testing.T) {
	repo := newMemoryRepo()
	svc := purchases.NewService(repo)

	_, err := svc.CreateBill(context.Background(), 1, billFixture())
	require.NoError(t, err)

	_, err = svc.CreateBill(context.Background(), 1, billFixture())
	require.ErrorIs(t, err, purchases.ErrDuplicateInvoice)
	require.Len(t, repo.Batches, 1)
}

func TestCreateBillRepeatedBatchNoStaysSeparate(t *testing.T) {
	repo := newMemoryRepo()
	svc := purchases.NewService(repo)

	first := billFixture()
	_, err := svc.CreateBill(context.Background(), 1, first)
	require.NoError(t, err)

	second := billFixture()
	second.InvoiceNo = "SUP-2206"
	second.Items[0].Quantity = 50
	_, err = svc.CreateBill(context.Background(), 1, second)
	require.NoError(t, err)

	// Same batch number arriving twice never merges lots.
	require.Len(t, repo.Batches, 2)
	agg, _ := repo.Aggregate(1, 7)
	require.EqualValues(t, 150, agg.Stock)
}

func TestCreateBillDefaultsInvoiceDateToToday(t *testing.T) {
	repo := newMemoryRepo()
	svc := purchases.NewService(repo)

	req := billFixture()
	req.InvoiceDate = ""
	result, err := svc.CreateBill(context.Background(), 1, req)
	require.NoError(t, err)

	bill := repo.bills[result.BillID]
	require.Equal(t, time.Now().UTC().Format("2006-01-02"), bill.InvoiceDate.Format("2006-01-02"))
}

func TestGetBillUnknownID(t *testing.T) {
	repo := newMemoryRepo()
	svc := purchases.NewService(repo)
	_, _, err := svc.GetBill(context.Background(), 1, 42)
	require.ErrorIs(t, err, purchases.ErrNotFound)
}

var _ stock.TxLedger = (*stocktest.MemoryLedger)(nil)
