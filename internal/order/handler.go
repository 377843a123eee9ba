package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ecomdemo/storefront/internal/httpapi"
)

type CheckoutItemRequest struct {
	ProductID uuid.UUID       `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
}

type CheckoutRequest struct {
	UserID uuid.UUID             `json:"userId" validate:"required"`
	Items  []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
	Total  decimal.Decimal       `json:"total" validate:"required"`
}

type CheckoutResponse struct {
	OrderID      uuid.UUID `json:"orderId"`
	ClientSecret string    `json:"clientSecret"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/checkout", h.handleCheckout)
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.Patch("/orders/{id}", h.handleUpdateStatus)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		httpapi.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		httpapi.RespondValidationError(w, err)
		return
	}

	input := CheckoutInput{
		UserID: req.UserID,
		Items:  make([]CheckoutItem, 0, len(req.Items)),
		Total:  req.Total,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, CheckoutItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	result, err := h.service.Checkout(r.Context(), input)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", req.UserID).Msg("Failed to process checkout via service")
		httpapi.RespondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to process checkout"))
		return
	}

	httpapi.RespondData(w, http.StatusCreated, CheckoutResponse{
		OrderID:      result.OrderID,
		ClientSecret: result.ClientSecret,
	})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		httpapi.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	o, err := h.service.GetOrderByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Msg("Failed to get order via service")
		}
		httpapi.RespondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to fetch order"))
		return
	}

	httpapi.RespondData(w, http.StatusOK, o)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.FromString(r.URL.Query().Get("userId"))
	if err != nil {
		httpapi.RespondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	orders, err := h.service.GetOrdersByUserID(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders via service")
		httpapi.RespondError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	httpapi.RespondData(w, http.StatusOK, orders)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		httpapi.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var req UpdateStatusRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		httpapi.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		httpapi.RespondValidationError(w, err)
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidTransition) && !errors.Is(err, ErrInvalidStatus) {
			log.Error().Err(err).Msg("Failed to update order status via service")
		}
		httpapi.RespondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to update order"))
		return
	}

	httpapi.RespondData(w, http.StatusOK, updated)
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrInvalidItem),
		errors.Is(err, ErrTotalMismatch), errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, ErrPaymentFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func clientMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "Order not found"
	case errors.Is(err, ErrInvalidTransition):
		return "Invalid status transition"
	case errors.Is(err, ErrInvalidStatus):
		return "Unknown order status"
	case errors.Is(err, ErrEmptyOrder):
		return "Order must contain at least one item"
	case errors.Is(err, ErrInvalidItem):
		return "Invalid order item"
	case errors.Is(err, ErrTotalMismatch):
		return "Total does not match item prices"
	case errors.Is(err, ErrPaymentFailed):
		return "Payment failed"
	default:
		return fallback
	}
}
