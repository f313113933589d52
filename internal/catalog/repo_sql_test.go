package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncStatementNamesLedgerColumns(t *testing.T) {
	// shop_products is also written by the stock upserts; the sync insert has
	// to name the same columns or one of the two statements fails at runtime.
	for _, col := range []string{"shop_id", "product_id", "stock", "purchase_rate", "mrp", "last_updated"} {
		require.Contains(t, syncShopProductsSQL, col)
	}
	require.NotContains(t, syncShopProductsSQL, " updated_at")
}
