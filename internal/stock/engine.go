package stock

import (
	"context"
	"errors"
	"fmt"
)

// The allocation engine mutates the batch ledger and the aggregate counter
// together. All functions operate on a TxLedger so journal services can run
// them inside their own transactions; none of them commit.
//
// Availability is pre-checked by callers against the aggregate. Past that
// check the engine never rejects for shortfall: when a sale requests more
// than the batches hold, the aggregate is still decremented by the full
// requested quantity and the excess simply goes unrecorded against any lot.
// The clamp-at-zero semantics on every decrement mirror that policy.

// AllocateSale consumes stock for one sold line, earliest expiry first, and
// returns the per-batch allocation actually recorded.
func AllocateSale(ctx context.Context, tx TxLedger, shopID, productID, qty int64) ([]BatchAllocation, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	batches, err := tx.OpenBatchesForUpdate(ctx, shopID, productID)
	if err != nil {
		return nil, fmt.Errorf("stock: list open batches: %w", err)
	}

	remaining := qty
	var allocations []BatchAllocation
	for _, b := range batches {
		if remaining <= 0 {
			break
		}
		use := min(b.Remaining(), remaining)
		if use <= 0 {
			continue
		}
		if err := tx.AddBatchSold(ctx, shopID, b.ID, use); err != nil {
			return nil, fmt.Errorf("stock: mark batch %d sold: %w", b.ID, err)
		}
		allocations = append(allocations, BatchAllocation{BatchID: b.ID, BatchNo: b.BatchNo, Qty: use})
		remaining -= use
	}

	// The counter always moves by the full requested quantity, even when the
	// batch walk came up short.
	if err := adjustAggregate(ctx, tx, shopID, productID, -qty, 0, 0, false); err != nil {
		return nil, err
	}
	return allocations, nil
}

// ReverseSale puts a sold quantity back, used by sale deletion and sales
// returns. The aggregate is restored in full; on the batch side only the
// first lot matching the recorded batch number is adjusted, clamped at zero.
func ReverseSale(ctx context.Context, tx TxLedger, shopID, productID int64, batchNo string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if err := adjustAggregate(ctx, tx, shopID, productID, qty, 0, 0, false); err != nil {
		return err
	}
	if err := tx.ReduceBatchSoldByNo(ctx, shopID, productID, batchNo, qty); err != nil {
		return fmt.Errorf("stock: reduce sold qty: %w", err)
	}
	return nil
}

// ReceiveBatch appends a new lot and grows the aggregate. Lots are never
// merged; a duplicate batch number still gets its own row.
func ReceiveBatch(ctx context.Context, tx TxLedger, in ReceiveInput) (int64, error) {
	if in.Qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	batchID, err := tx.InsertBatch(ctx, Batch{
		ShopID:       in.ShopID,
		ProductID:    in.ProductID,
		BatchNo:      in.BatchNo,
		ExpiryDate:   in.ExpiryDate,
		Quantity:     in.Qty,
		PurchaseRate: in.PurchaseRate,
		MRP:          in.MRP,
		BillID:       in.BillID,
	})
	if err != nil {
		return 0, fmt.Errorf("stock: insert batch: %w", err)
	}
	if err := adjustAggregate(ctx, tx, in.ShopID, in.ProductID, in.Qty, in.PurchaseRate, in.MRP, true); err != nil {
		return 0, err
	}
	return batchID, nil
}

// ReturnPurchase sends stock back to the supplier: the aggregate and the
// matching lot's received quantity both shrink, floored at zero.
func ReturnPurchase(ctx context.Context, tx TxLedger, shopID, productID int64, batchNo string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if err := adjustAggregate(ctx, tx, shopID, productID, -qty, 0, 0, false); err != nil {
		return err
	}
	if err := tx.ReduceBatchQtyByNo(ctx, shopID, productID, batchNo, qty); err != nil {
		return fmt.Errorf("stock: reduce batch qty: %w", err)
	}
	return nil
}

// ReverseSalesReturn undoes a sales return when its journal entry is deleted:
// the returned goods are treated as sold again.
func ReverseSalesReturn(ctx context.Context, tx TxLedger, shopID, productID int64, batchNo string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if err := adjustAggregate(ctx, tx, shopID, productID, -qty, 0, 0, false); err != nil {
		return err
	}
	if err := tx.AddBatchSoldByNo(ctx, shopID, productID, batchNo, qty); err != nil {
		return fmt.Errorf("stock: restore sold qty: %w", err)
	}
	return nil
}

// ReversePurchaseReturn undoes a purchase return on journal deletion: the lot
// and the aggregate grow back by the returned quantity.
func ReversePurchaseReturn(ctx context.Context, tx TxLedger, shopID, productID int64, batchNo string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if err := adjustAggregate(ctx, tx, shopID, productID, qty, 0, 0, false); err != nil {
		return err
	}
	if err := tx.AddBatchQtyByNo(ctx, shopID, productID, batchNo, qty); err != nil {
		return fmt.Errorf("stock: restore batch qty: %w", err)
	}
	return nil
}

// adjustAggregate moves the counter by delta, creating the row on first
// purchase and flooring the result at zero. Rates are refreshed only on
// inbound movements.
func adjustAggregate(ctx context.Context, tx TxLedger, shopID, productID, delta int64, rate, mrp float64, refreshRates bool) error {
	agg, err := tx.AggregateForUpdate(ctx, shopID, productID)
	if err != nil && !errors.Is(err, ErrAggregateNotFound) {
		return fmt.Errorf("stock: lock aggregate: %w", err)
	}
	if errors.Is(err, ErrAggregateNotFound) {
		agg = Aggregate{ShopID: shopID, ProductID: productID}
	}
	agg.Stock = max(agg.Stock+delta, 0)
	if refreshRates && delta > 0 {
		agg.PurchaseRate = rate
		agg.MRP = mrp
	}
	if err := tx.UpsertAggregate(ctx, agg); err != nil {
		return fmt.Errorf("stock: upsert aggregate: %w", err)
	}
	return nil
}
