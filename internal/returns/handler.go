package returns

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pharmapos/pharmapos/internal/platform/httpx"
	"github.com/pharmapos/pharmapos/internal/shopctx"
)

// Handler wires HTTP endpoints for both return journals.
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

// MountRoutes registers return routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/returns", h.handleCreateSalesReturn)
	r.Get("/returns", h.handleListSalesReturns)
	r.Get("/returns/{returnID}", h.handleGetSalesReturn)
	r.Delete("/returns/{returnID}", h.handleDeleteSalesReturn)

	r.Post("/purchase-returns", h.handleCreatePurchaseReturn)
	r.Get("/purchase-returns", h.handleListPurchaseReturns)
	r.Get("/purchase-returns/{returnID}", h.handleGetPurchaseReturn)
	r.Delete("/purchase-returns/{returnID}", h.handleDeletePurchaseReturn)
}

func (h *Handler) handleCreateSalesReturn(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())

	var req CreateSalesReturnRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	returnID, err := h.service.CreateSalesReturn(r.Context(), shopID, req)
	if err != nil {
		h.respondCreateError(w, shopID, "create sales return", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"return_id": returnID})
}

func (h *Handler) handleCreatePurchaseReturn(w http.ResponseWriter, r *http.Request) {
	shopID, _ := shopctx.FromContext(r.Context())

	var req CreatePurchaseReturnRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	returnID, err := h.service.CreatePurchaseReturn(r.Context(), shopID, req)
	if err != nil {
		h.respondCreateError(w, shopID, "create purchase return", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"return_id": returnID})
}

func (h *Handler) respondCreateError(w http.ResponseWriter, shopID int64, op string, err error) {
	if errors.Is(err, ErrNoItems) {
		httpx.Problem(w, http.StatusBadRequest, "Cannot Create Return", err.Error())
		return
	}
	h.logger.Error(op, slog.Int64("shop_id", shopID), slog.Any("error", err))
	httpx.RespondError(w, err)
}

func (h *Handler) handleListSalesReturns(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListSalesReturns)
}

func (h *Handler) handleListPurchaseReturns(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListPurchaseReturns)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, load func(ctx context.Context, shopID int64) ([]Return, error)) {
	shopID, _ := shopctx.FromContext(r.Context())
	rows, err := load(r.Context(), shopID)
	if err != nil {
		h.logger.Error("list returns", slog.Int64("shop_id", shopID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handleGetSalesReturn(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, h.service.GetSalesReturn)
}

func (h *Handler) handleGetPurchaseReturn(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, h.service.GetPurchaseReturn)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, load func(ctx context.Context, shopID, returnID int64) (Return, []ReturnItem, error)) {
	shopID, _ := shopctx.FromContext(r.Context())
	returnID, ok := parseReturnID(w, r)
	if !ok {
		return
	}
	ret, items, err := load(r.Context(), shopID, returnID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("get return", slog.Int64("shop_id", shopID), slog.Int64("return_id", returnID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"return": ret, "items": items})
}

func (h *Handler) handleDeleteSalesReturn(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.service.DeleteSalesReturn)
}

func (h *Handler) handleDeletePurchaseReturn(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.service.DeletePurchaseReturn)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, shopID, returnID int64) error) {
	shopID, _ := shopctx.FromContext(r.Context())
	returnID, ok := parseReturnID(w, r)
	if !ok {
		return
	}
	if err := del(r.Context(), shopID, returnID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("delete return", slog.Int64("shop_id", shopID), slog.Int64("return_id", returnID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func parseReturnID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	returnID, err := strconv.ParseInt(chi.URLParam(r, "returnID"), 10, 64)
	if err != nil || returnID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Return", "return id must be a positive integer")
		return 0, false
	}
	return returnID, true
}
