// Package shopctx resolves the pharmacy branch a request operates on.
//
// Every ledger endpoint is scoped to one shop. The shop identifier arrives in
// the X-Shop-Id header, is validated once by Middleware, and is then threaded
// through service calls as an explicit parameter; nothing below the handler
// layer reads it from ambient state.
package shopctx

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pharmapos/pharmapos/internal/platform/httpx"
)

// Header carries the shop identifier on every request.
const Header = "X-Shop-Id"

type shopContextKey struct{}

// WithShop stores the shop id in context.
func WithShop(ctx context.Context, shopID int64) context.Context {
	return context.WithValue(ctx, shopContextKey{}, shopID)
}

// FromContext extracts the shop id from context. The second return is false
// when the request never passed through Middleware.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(shopContextKey{}).(int64)
	return id, ok
}

// Middleware rejects requests without a valid shop header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(Header)
		if raw == "" {
			httpx.Problem(w, http.StatusBadRequest, "Missing Shop", "X-Shop-Id header is required")
			return
		}
		shopID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || shopID <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Shop", "X-Shop-Id header must be a positive integer")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithShop(r.Context(), shopID)))
	})
}
