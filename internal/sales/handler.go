package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pharmapos/pharmapos/internal/platform/httpx"
	"github.com/pharmapos/pharmapos/internal/shopctx"
)

// Handler wires HTTP endpoints for the sale journal.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers sale routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales", h.handleCreate)
	r.Get("/sales", h.handleList)
	r.Get("/sales/{saleID}", h.handleGet)
	r.Delete("/sales/{saleID}", h.handleDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())

	var req CreateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	result, err := h.service.CreateSale(r.Context(), shopID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoItems), errors.Is(err, ErrInsufficientStock):
			httpx.Problem(w, http.StatusBadRequest, "Cannot Create Sale", err.Error())
		default:
			h.logger.Error("create sale", slog.Int64("shop_id", shopID), slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())
	q := r.URL.Query()
	filter := ListFilter{
		Query:      q.Get("q"),
		Status:     q.Get("status"),
		DateFilter: q.Get("date_filter"),
	}
	if from, err := time.Parse("2006-01-02", q.Get("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse("2006-01-02", q.Get("to")); err == nil {
		end := to.AddDate(0, 0, 1).Add(-time.Second)
		filter.To = &end
	}
	sales, err := h.service.ListSales(r.Context(), shopID, filter)
	if err != nil {
		h.logger.Error("list sales", slog.Int64("shop_id", shopID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sales)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())
	saleID, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil || saleID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Sale", "sale id must be a positive integer")
		return
	}
	sale, items, err := h.service.GetSale(r.Context(), shopID, saleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("get sale", slog.Int64("shop_id", shopID), slog.Int64("sale_id", saleID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sale": sale, "items": items})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())
	saleID, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil || saleID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Sale", "sale id must be a positive integer")
		return
	}
	if err := h.service.DeleteSale(r.Context(), shopID, saleID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("delete sale", slog.Int64("shop_id", shopID), slog.Int64("sale_id", saleID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
