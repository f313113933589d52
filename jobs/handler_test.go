package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/pharmapos/pharmapos/internal/shopctx"
	"github.com/pharmapos/pharmapos/jobs"
)

type fakeEnqueuer struct {
	expiryShops   []int64
	lowStockShops []int64
	err           error
}

func (f *fakeEnqueuer) EnqueueExpiryScan(_ context.Context, p jobs.ScanPayload) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.expiryShops = append(f.expiryShops, p.ShopID)
	return &asynq.TaskInfo{ID: "task-1", Type: jobs.TaskExpiryScan}, nil
}

func (f *fakeEnqueuer) EnqueueLowStockScan(_ context.Context, p jobs.ScanPayload) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lowStockShops = append(f.lowStockShops, p.ShopID)
	return &asynq.TaskInfo{ID: "task-2", Type: jobs.TaskLowStockScan}, nil
}

func newScanRouter(enq jobs.Enqueuer) chi.Router {
	h := jobs.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), enq)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func shopRequest(method, target string, shopID int64) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(shopctx.WithShop(req.Context(), shopID))
}

func TestScanTriggersEnqueueForRequestShop(t *testing.T) {
	enq := &fakeEnqueuer{}
	router := newScanRouter(enq)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, shopRequest(http.MethodPost, "/scans/expiry", 7))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, []int64{7}, enq.expiryShops)
	require.Contains(t, rec.Body.String(), "task-1")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, shopRequest(http.MethodPost, "/scans/low-stock", 7))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, []int64{7}, enq.lowStockShops)
}

func TestScanTriggerReportsEnqueueFailure(t *testing.T) {
	enq := &fakeEnqueuer{err: errors.New("redis down")}
	router := newScanRouter(enq)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, shopRequest(http.MethodPost, "/scans/expiry", 1))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
