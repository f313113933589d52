package purchases

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pharmapos/pharmapos/internal/platform/httpx"
	"github.com/pharmapos/pharmapos/internal/shopctx"
)

// Handler wires HTTP endpoints for the purchase journal.
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

// MountRoutes registers purchase routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/purchase-bills", h.handleCreate)
	r.Get("/purchase-bills", h.handleList)
	r.Get("/purchase-bills/{billID}", h.handleGet)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())

	var req CreateBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	result, err := h.service.CreateBill(r.Context(), shopID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoItems):
			httpx.Problem(w, http.StatusBadRequest, "Cannot Create Bill", err.Error())
		case errors.Is(err, ErrDuplicateInvoice):
			httpx.Problem(w, http.StatusConflict, "Duplicate Invoice", err.Error())
		default:
			h.logger.Error("create purchase bill", slog.Int64("shop_id", shopID), slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())
	bills, err := h.service.ListBills(r.Context(), shopID)
	if err != nil {
		h.logger.Error("list purchase bills", slog.Int64("shop_id", shopID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bills)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())
	billID, err := strconv.ParseInt(chi.URLParam(r, "billID"), 10, 64)
	if err != nil || billID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Bill", "bill id must be a positive integer")
		return
	}
	bill, items, err := h.service.GetBill(r.Context(), shopID, billID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("get purchase bill", slog.Int64("shop_id", shopID), slog.Int64("bill_id", billID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bill": bill, "items": items})
}
