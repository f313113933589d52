package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pharmapos/pharmapos/internal/platform/httpx"
	"github.com/pharmapos/pharmapos/internal/shopctx"
)

// Handler wires HTTP endpoints for the shared catalog.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.handleList)
	r.Post("/stock/sync-products", h.handleSync)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := ListFilter{
		Search:       q.Get("search"),
		Category:     q.Get("category"),
		Manufacturer: q.Get("manufacturer"),
		Page:         page,
		Limit:        limit,
	}
	result, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())
	result, err := h.service.SyncShopProducts(r.Context(), shopID)
	if err != nil {
		h.logger.Error("sync shop products", slog.Int64("shop_id", shopID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
