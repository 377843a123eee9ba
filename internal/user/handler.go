package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ecomdemo/storefront/internal/httpapi"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

type CreateAddressRequest struct {
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	Country   string `json:"country" validate:"required"`
	IsDefault bool   `json:"is_default"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
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
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
	router.Get("/users/{id}", h.handleGetUser)
	router.Put("/users/{id}", h.handleUpdateUser)
	router.Get("/users/{id}/addresses", h.handleListAddresses)
	router.Post("/users/{id}/addresses", h.handleCreateAddress)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

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

	u, token, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if !errors.Is(err, ErrEmailExists) {
			log.Error().Err(err).Msg("Failed to register user via service")
		}
		httpapi.RespondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to register user"))
		return
	}

	httpapi.RespondData(w, http.StatusCreated, AuthResponse{User: toUserResponse(u), Token: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

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

	u, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			log.Error().Err(err).Msg("Failed to login via service")
		}
		httpapi.RespondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to login"))
		return
	}

	httpapi.RespondData(w, http.StatusOK, AuthResponse{User: toUserResponse(u), Token: token})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		httpapi.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	u, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Msg("Failed to get user via service")
		}
		httpapi.RespondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to get user"))
		return
	}

	httpapi.RespondData(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		httpapi.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var req UpdateUserRequest

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

	u := &User{ID: id, Email: req.Email, Name: req.Name}
	if err := h.service.UpdateUser(r.Context(), u); err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrEmailExists) {
			log.Error().Err(err).Msg("Failed to update user via service")
		}
		httpapi.RespondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to update user"))
		return
	}

	httpapi.RespondData(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		httpapi.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	addresses, err := h.service.ListAddresses(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list addresses via service")
		httpapi.RespondError(w, mapErrorToStatusCode(err), "Failed to fetch addresses")
		return
	}

	httpapi.RespondData(w, http.StatusOK, addresses)
}

func (h *Handler) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		httpapi.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var req CreateAddressRequest

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

	a := &Address{
		UserID:    id,
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	}

	created, err := h.service.CreateAddress(r.Context(), a)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Msg("Failed to create address via service")
		}
		httpapi.RespondError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to create address"))
		return
	}

	httpapi.RespondData(w, http.StatusCreated, created)
}

func toUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func clientMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "User not found"
	case errors.Is(err, ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials"
	default:
		return fallback
	}
}
