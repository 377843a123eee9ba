package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ecomdemo/storefront/internal/httpapi"
)

type AddItemRequest struct {
	UserID    uuid.UUID `json:"userId" validate:"required"`
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemRequest addresses a line either by item id or by the
// (userId, productId) pair. Quantity at or below zero means removal.
type UpdateItemRequest struct {
	ID        *uuid.UUID `json:"id,omitempty"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	ProductID *uuid.UUID `json:"productId,omitempty"`
	Quantity  *int       `json:"quantity" validate:"required"`
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
	router.Get("/cart", h.handleGetCart)
	router.Post("/cart", h.handleAddItem)
	router.Put("/cart", h.handleUpdateItem)
	router.Delete("/cart", h.handleDelete)
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.FromString(r.URL.Query().Get("userId"))
	if err != nil {
		httpapi.RespondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	items, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch cart via service")
		httpapi.RespondError(w, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	httpapi.RespondData(w, http.StatusOK, items)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest

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

	item, err := h.service.AddToCart(r.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrInvalidQuantity) {
			httpapi.RespondError(w, http.StatusBadRequest, "Quantity must be greater than zero")
			return
		}
		log.Error().Err(err).Msg("Failed to add to cart via service")
		httpapi.RespondError(w, http.StatusInternalServerError, "Failed to add to cart")
		return
	}

	httpapi.RespondData(w, http.StatusCreated, item)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest

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

	var (
		result *SetResult
		err    error
	)
	switch {
	case req.ID != nil:
		result, err = h.service.SetQuantityByID(r.Context(), *req.ID, *req.Quantity)
	case req.UserID != nil && req.ProductID != nil:
		result, err = h.service.SetQuantityByUserProduct(r.Context(), *req.UserID, *req.ProductID, *req.Quantity)
	default:
		httpapi.RespondError(w, http.StatusBadRequest, "Either id or userId and productId are required")
		return
	}
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			httpapi.RespondError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		log.Error().Err(err).Msg("Failed to update cart via service")
		httpapi.RespondError(w, http.StatusInternalServerError, "Failed to update cart")
		return
	}

	if result.Deleted {
		httpapi.RespondData(w, http.StatusOK, map[string]bool{"deleted": true})
		return
	}
	httpapi.RespondData(w, http.StatusOK, result.Item)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, err := uuid.FromString(raw)
		if err != nil {
			httpapi.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
			return
		}

		if err := h.service.RemoveItem(r.Context(), id); err != nil {
			if errors.Is(err, ErrItemNotFound) {
				httpapi.RespondError(w, http.StatusNotFound, "Cart item not found")
				return
			}
			log.Error().Err(err).Msg("Failed to remove cart item via service")
			httpapi.RespondError(w, http.StatusInternalServerError, "Failed to delete from cart")
			return
		}

		httpapi.RespondData(w, http.StatusOK, map[string]string{"message": "Cart item removed"})
		return
	}

	if raw := r.URL.Query().Get("userId"); raw != "" {
		userID, err := uuid.FromString(raw)
		if err != nil {
			httpapi.RespondError(w, http.StatusBadRequest, "Invalid userId parameter")
			return
		}

		if err := h.service.ClearCart(r.Context(), userID); err != nil {
			log.Error().Err(err).Msg("Failed to clear cart via service")
			httpapi.RespondError(w, http.StatusInternalServerError, "Failed to delete from cart")
			return
		}

		httpapi.RespondData(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
		return
	}

	httpapi.RespondError(w, http.StatusBadRequest, "User ID or item ID is required")
}
