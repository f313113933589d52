package stock

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pharmapos/pharmapos/internal/platform/httpx"
	"github.com/pharmapos/pharmapos/internal/shopctx"
)

// Handler wires HTTP endpoints for stock views and reports.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs stock handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stock", h.handleCurrentStock)
	r.Get("/stock/batches/{productID}", h.handleProductBatches)
	r.Get("/stock/check/{productID}/{batchNo}", h.handleBatchCheck)
	r.Get("/reports/expiry", h.handleExpiryReport)
	r.Get("/reports/low-stock", h.handleLowStock)
}

func (h *Handler) handleCurrentStock(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())
	rows, err := h.service.CurrentStock(r.Context(), shopID)
	if err != nil {
		h.logger.Error("current stock", slog.Int64("shop_id", shopID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handleProductBatches(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product", "product id must be a positive integer")
		return
	}
	views, err := h.service.ProductBatches(r.Context(), shopID, productID)
	if err != nil {
		h.logger.Error("product batches", slog.Int64("shop_id", shopID), slog.Int64("product_id", productID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) handleBatchCheck(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product", "product id must be a positive integer")
		return
	}
	batchNo := chi.URLParam(r, "batchNo")
	available, err := h.service.BatchAvailability(r.Context(), shopID, productID, batchNo)
	if err != nil {
		h.logger.Error("batch check", slog.Int64("shop_id", shopID), slog.Int64("product_id", productID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"available": available})
}

func (h *Handler) handleExpiryReport(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())
	report, err := h.service.ExpiryReport(r.Context(), shopID)
	if err != nil {
		h.logger.Error("expiry report", slog.Int64("shop_id", shopID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())
	rows, err := h.service.LowStock(r.Context(), shopID)
	if err != nil {
		h.logger.Error("low stock", slog.Int64("shop_id", shopID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
