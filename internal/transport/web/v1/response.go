package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EgorLis/media-gate/internal/domain"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, text string) {
	WriteJSON(w, status, map[string]string{"error": text})
}

// MapDomainError решает HTTP-статус и текст для пользователя.
// Никаких стектрейсов и внутренних деталей наружу.
func MapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrBadParams), errors.Is(err, domain.ErrInvalidKey):
		return http.StatusBadRequest, "bad params"
	case errors.Is(err, domain.ErrUnauth):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		if reason := domain.ForbiddenReason(err); reason != "" {
			return http.StatusForbidden, reason
		}
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method not allowed"
	default:
		// ErrStorage и всё неожиданное — 500
		return http.StatusInternalServerError, "unexpected error"
	}
}

func WriteDomainError(w http.ResponseWriter, err error) {
	status, text := MapDomainError(err)
	WriteError(w, status, text)
}
