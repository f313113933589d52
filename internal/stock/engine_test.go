package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmapos/pharmapos/internal/stock"
	"github.com/pharmapos/pharmapos/internal/stock/stocktest"
)

func date(value string) *time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestAllocateSaleFEFOOrder(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	ctx := context.Background()

	b1 := ledger.SeedBatch(stock.Batch{ShopID: 1, ProductID: 7, BatchNo: "B1", ExpiryDate: date("2025-01-01"), Quantity: 10})
	b2 := ledger.SeedBatch(stock.Batch{ShopID: 1, ProductID: 7, BatchNo: "B2", ExpiryDate: date("2025-02-01"), Quantity: 5})
	ledger.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 7, Stock: 15})

	allocs, err := stock.AllocateSale(ctx, ledger, 1, 7, 12)
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	require.Equal(t, stock.BatchAllocation{BatchID: b1, BatchNo: "B1", Qty: 10}, allocs[0])
	require.Equal(t, stock.BatchAllocation{BatchID: b2, BatchNo: "B2", Qty: 2}, allocs[1])
	require.EqualValues(t, 10, ledger.Batch(b1).SoldQty)
	require.EqualValues(t, 2, ledger.Batch(b2).SoldQty)

	agg, _ := ledger.Aggregate(1, 7)
	require.EqualValues(t, 3, agg.Stock)

	// B1 is exhausted, the next unit comes from B2.
	allocs, err = stock.AllocateSale(ctx, ledger, 1, 7, 1)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	require.Equal(t, b2, allocs[0].BatchID)
	require.EqualValues(t, 3, ledger.Batch(b2).SoldQty)
}

func TestAllocateSaleNullExpiryConsumedLast(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	ctx := context.Background()

	undated := ledger.SeedBatch(stock.Batch{ShopID: 1, ProductID: 3, BatchNo: "OPEN", Quantity: 10})
	dated := ledger.SeedBatch(stock.Batch{ShopID: 1, ProductID: 3, BatchNo: "DATED", ExpiryDate: date("2030-06-01"), Quantity: 4})
	ledger.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 3, Stock: 14})

	_, err := stock.AllocateSale(ctx, ledger, 1, 3, 6)
	require.NoError(t, err)
	require.EqualValues(t, 4, ledger.Batch(dated).SoldQty)
	require.EqualValues(t, 2, ledger.Batch(undated).SoldQty)
}

func TestAllocateSaleShortfallDecrementsAggregateInFull(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	ctx := context.Background()

	// Legacy no-batch stock: the counter exceeds the sum of lot remainders.
	b := ledger.SeedBatch(stock.Batch{ShopID: 1, ProductID: 9, BatchNo: "L1", ExpiryDate: date("2026-01-01"), Quantity: 3})
	ledger.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 9, Stock: 10})

	allocs, err := stock.AllocateSale(ctx, ledger, 1, 9, 5)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	require.EqualValues(t, 3, allocs[0].Qty)
	require.EqualValues(t, 3, ledger.Batch(b).SoldQty)

	// The counter moved by the full 5 even though only 3 were allocated.
	agg, _ := ledger.Aggregate(1, 9)
	require.EqualValues(t, 5, agg.Stock)
}

func TestAllocateSaleClampsAggregateAtZero(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	ctx := context.Background()

	ledger.SeedBatch(stock.Batch{ShopID: 1, ProductID: 4, BatchNo: "X", ExpiryDate: date("2026-01-01"), Quantity: 3})
	ledger.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 4, Stock: 3})

	_, err := stock.AllocateSale(ctx, ledger, 1, 4, 5)
	require.NoError(t, err)
	agg, _ := ledger.Aggregate(1, 4)
	require.EqualValues(t, 0, agg.Stock)
}

func TestAllocateSaleRejectsNonPositiveQty(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	_, err := stock.AllocateSale(context.Background(), ledger, 1, 1, 0)
	require.ErrorIs(t, err, stock.ErrInvalidQuantity)
}

func TestReverseSaleRestoresSingleBatchExactly(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	ctx := context.Background()

	b := ledger.SeedBatch(stock.Batch{ShopID: 2, ProductID: 5, BatchNo: "RX1", ExpiryDate: date("2027-03-01"), Quantity: 20})
	ledger.SeedAggregate(stock.Aggregate{ShopID: 2, ProductID: 5, Stock: 20, PurchaseRate: 12.5, MRP: 18})

	_, err := stock.AllocateSale(ctx, ledger, 2, 5, 8)
	require.NoError(t, err)

	require.NoError(t, stock.ReverseSale(ctx, ledger, 2, 5, "RX1", 8))

	agg, _ := ledger.Aggregate(2, 5)
	require.EqualValues(t, 20, agg.Stock)
	require.EqualValues(t, 0, ledger.Batch(b).SoldQty)
	require.Equal(t, 12.5, agg.PurchaseRate)
	require.Equal(t, 18.0, agg.MRP)
}

func TestReverseSaleMultiBatchLeavesPhantomSold(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	ctx := context.Background()

	b1 := ledger.SeedBatch(stock.Batch{ShopID: 1, ProductID: 7, BatchNo: "B1", ExpiryDate: date("2025-01-01"), Quantity: 10})
	b2 := ledger.SeedBatch(stock.Batch{ShopID: 1, ProductID: 7, BatchNo: "B2", ExpiryDate: date("2025-02-01"), Quantity: 5})
	ledger.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 7, Stock: 15})

	// 12 units split 10/2 across the lots; the journal line only records "B1",
	// so the full 12 reverse against it.
	_, err := stock.AllocateSale(ctx, ledger, 1, 7, 12)
	require.NoError(t, err)
	require.NoError(t, stock.ReverseSale(ctx, ledger, 1, 7, "B1", 12))

	// The counter is made whole; the 2 units taken from B2 stay marked sold.
	agg, _ := ledger.Aggregate(1, 7)
	require.EqualValues(t, 15, agg.Stock)
	require.EqualValues(t, 0, ledger.Batch(b1).SoldQty)
	require.EqualValues(t, 2, ledger.Batch(b2).SoldQty)
}

func TestReverseSaleClampsSoldAtZero(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	ctx := context.Background()

	b := ledger.SeedBatch(stock.Batch{ShopID: 1, ProductID: 2, BatchNo: "C1", Quantity: 10, SoldQty: 2})
	ledger.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 2, Stock: 8})

	require.NoError(t, stock.ReverseSale(ctx, ledger, 1, 2, "C1", 5))
	require.EqualValues(t, 0, ledger.Batch(b).SoldQty)
	agg, _ := ledger.Aggregate(1, 2)
	require.EqualValues(t, 13, agg.Stock)
}

func TestReceiveBatchNeverMergesLots(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	ctx := context.Background()

	first, err := stock.ReceiveBatch(ctx, ledger, stock.ReceiveInput{ShopID: 1, ProductID: 6, BatchNo: "DUP", Qty: 10, PurchaseRate: 5, MRP: 9})
	require.NoError(t, err)
	second, err := stock.ReceiveBatch(ctx, ledger, stock.ReceiveInput{ShopID: 1, ProductID: 6, BatchNo: "DUP", Qty: 4, PurchaseRate: 6, MRP: 9.5})
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.Len(t, ledger.Batches, 2)

	agg, _ := ledger.Aggregate(1, 6)
	require.EqualValues(t, 14, agg.Stock)
	// Rates reflect the latest purchase.
	require.Equal(t, 6.0, agg.PurchaseRate)
	require.Equal(t, 9.5, agg.MRP)
}

func TestReturnPurchaseFloorsAtZero(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	ctx := context.Background()

	b := ledger.SeedBatch(stock.Batch{ShopID: 1, ProductID: 8, BatchNo: "PR1", Quantity: 3})
	ledger.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 8, Stock: 3})

	require.NoError(t, stock.ReturnPurchase(ctx, ledger, 1, 8, "PR1", 5))
	require.EqualValues(t, 0, ledger.Batch(b).Quantity)
	agg, _ := ledger.Aggregate(1, 8)
	require.EqualValues(t, 0, agg.Stock)
}

func TestReversePurchaseReturnRestoresBoth(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	ctx := context.Background()

	b := ledger.SeedBatch(stock.Batch{ShopID: 1, ProductID: 8, BatchNo: "PR2", Quantity: 10})
	ledger.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 8, Stock: 10})

	require.NoError(t, stock.ReturnPurchase(ctx, ledger, 1, 8, "PR2", 4))
	require.NoError(t, stock.ReversePurchaseReturn(ctx, ledger, 1, 8, "PR2", 4))

	require.EqualValues(t, 10, ledger.Batch(b).Quantity)
	agg, _ := ledger.Aggregate(1, 8)
	require.EqualValues(t, 10, agg.Stock)
}

func TestReverseSalesReturnMarksSoldAgain(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	ctx := context.Background()

	b := ledger.SeedBatch(stock.Batch{ShopID: 1, ProductID: 5, BatchNo: "SR1", Quantity: 10, SoldQty: 6})
	ledger.SeedAggregate(stock.Aggregate{ShopID: 1, ProductID: 5, Stock: 4})

	// A customer returned 2 units, then the return entry was deleted.
	require.NoError(t, stock.ReverseSale(ctx, ledger, 1, 5, "SR1", 2))
	require.NoError(t, stock.ReverseSalesReturn(ctx, ledger, 1, 5, "SR1", 2))

	require.EqualValues(t, 6, ledger.Batch(b).SoldQty)
	agg, _ := ledger.Aggregate(1, 5)
	require.EqualValues(t, 4, agg.Stock)
}

func TestAggregateMatchesBatchSumAfterMixedFlow(t *testing.T) {
	ledger := stocktest.NewMemoryLedger()
	ctx := context.Background()

	_, err := stock.ReceiveBatch(ctx, ledger, stock.ReceiveInput{ShopID: 3, ProductID: 1, BatchNo: "A", ExpiryDate: date("2026-05-01"), Qty: 10, PurchaseRate: 4, MRP: 7})
	require.NoError(t, err)
	_, err = stock.ReceiveBatch(ctx, ledger, stock.ReceiveInput{ShopID: 3, ProductID: 1, BatchNo: "B", ExpiryDate: date("2026-08-01"), Qty: 5, PurchaseRate: 4.2, MRP: 7})
	require.NoError(t, err)

	_, err = stock.AllocateSale(ctx, ledger, 3, 1, 6)
	require.NoError(t, err)
	require.NoError(t, stock.ReverseSale(ctx, ledger, 3, 1, "A", 2))
	require.NoError(t, stock.ReturnPurchase(ctx, ledger, 3, 1, "B", 1))

	var batchSum int64
	for _, b := range ledger.Batches {
		batchSum += b.Remaining()
	}
	agg, _ := ledger.Aggregate(3, 1)
	require.Equal(t, batchSum, agg.Stock)
}
