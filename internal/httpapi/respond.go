package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Response is the envelope every proxy-layer endpoint replies with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func RespondData(w http.ResponseWriter, code int, data any) {
	respond(w, code, Response{Success: true, Data: data})
}

func RespondError(w http.ResponseWriter, code int, message string) {
	respond(w, code, Response{Success: false, Error: message})
}

func respond(w http.ResponseWriter, code int, payload Response) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// RespondValidationError renders validator field errors into the envelope.
// Non-validator errors fall back to an internal error response.
func RespondValidationError(w http.ResponseWriter, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		log.Error().Err(err).Msg("Unexpected error type during validation")
		RespondError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	details := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details = append(details, fmt.Sprintf("field '%s' failed on '%s'", fieldErr.Field(), fieldErr.Tag()))
	}
	RespondError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(details, "; "))
}
