package product

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

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       *int            `json:"stock" validate:"required"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	ImageURL    string          `json:"image_url"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
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
	router.Get("/products", h.handleListProducts)
	router.Post("/products", h.handleCreateProduct)
	router.Get("/products/{id}", h.handleGetProduct)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
	router.Get("/categories", h.handleListCategories)
	router.Post("/categories", h.handleCreateCategory)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID uuid.NullUUID
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		parsed, err := uuid.FromString(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid category_id parameter")
			return
		}
		categoryID = uuid.NullUUID{UUID: parsed, Valid: true}
	}

	products, err := h.service.ListProducts(r.Context(), categoryID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products via service")
		respondError(w, mapErrorToStatusCode(err), "Failed to fetch products")
		return
	}

	httpapi.RespondData(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	p, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Msg("Failed to get product via service")
		}
		respondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to fetch product"))
		return
	}

	httpapi.RespondData(w, http.StatusOK, p)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		httpapi.RespondValidationError(w, err)
		return
	}

	p := Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       *req.Stock,
		ImageURL:    req.ImageURL,
	}
	if req.CategoryID != nil {
		p.CategoryID = uuid.NullUUID{UUID: *req.CategoryID, Valid: true}
	}

	created, err := h.service.CreateProduct(r.Context(), &p)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create product via service")
		respondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to create product"))
		return
	}

	httpapi.RespondData(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var req UpdateProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		httpapi.RespondValidationError(w, err)
		return
	}

	upd := Update{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	}

	updated, err := h.service.UpdateProduct(r.Context(), id, upd)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Msg("Failed to update product via service")
		}
		respondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to update product"))
		return
	}

	httpapi.RespondData(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Msg("Failed to delete product via service")
		}
		respondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to delete product"))
		return
	}

	httpapi.RespondData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories via service")
		respondError(w, mapErrorToStatusCode(err), "Failed to fetch categories")
		return
	}

	httpapi.RespondData(w, http.StatusOK, categories)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		httpapi.RespondValidationError(w, err)
		return
	}

	created, err := h.service.CreateCategory(r.Context(), &Category{Name: req.Name, Slug: req.Slug})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create category via service")
		respondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to create category"))
		return
	}

	httpapi.RespondData(w, http.StatusCreated, created)
}

func respondError(w http.ResponseWriter, code int, message string) {
	httpapi.RespondError(w, code, message)
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSlugExists):
		return http.StatusConflict
	case errors.Is(err, ErrCategoryNotFound), errors.Is(err, ErrInvalidPrice):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func clientMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "Product not found"
	case errors.Is(err, ErrSlugExists):
		return "Category slug already exists"
	case errors.Is(err, ErrCategoryNotFound):
		return "Category not found"
	case errors.Is(err, ErrInvalidPrice):
		return "Price must be non-negative"
	default:
		return fallback
	}
}
