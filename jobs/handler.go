package jobs

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/pharmapos/pharmapos/internal/platform/httpx"
	"github.com/pharmapos/pharmapos/internal/shopctx"
)

// Enqueuer submits scan tasks to the queue. *Client satisfies it.
type Enqueuer interface {
	EnqueueExpiryScan(ctx context.Context, payload ScanPayload) (*asynq.TaskInfo, error)
	EnqueueLowStockScan(ctx context.Context, payload ScanPayload) (*asynq.TaskInfo, error)
}

// Handler exposes on-demand scan triggers for the caller's shop, so a fresh
// stock take does not have to wait for the nightly cron.
type Handler struct {
	logger   *slog.Logger
	enqueuer Enqueuer
}

// NewHandler constructs jobs handler.
func NewHandler(logger *slog.Logger, enqueuer Enqueuer) *Handler {
	return &Handler{logger: logger, enqueuer: enqueuer}
}

// MountRoutes registers the scan trigger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/scans/expiry", h.handleExpiryScan)
	r.Post("/scans/low-stock", h.handleLowStockScan)
}

func (h *Handler) handleExpiryScan(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, h.enqueuer.EnqueueExpiryScan)
}

func (h *Handler) handleLowStockScan(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, h.enqueuer.EnqueueLowStockScan)
}

func (h *Handler) trigger(w http.ResponseWriter, r *http.Request, enqueue func(context.Context, ScanPayload) (*asynq.TaskInfo, error)) {
	shopID, _ := shopctx.FromContext(r.Context())
	info, err := enqueue(r.Context(), ScanPayload{ShopID: shopID})
	if err != nil {
		h.logger.Error("enqueue scan", slog.Int64("shop_id", shopID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": info.ID, "type": info.Type})
}
