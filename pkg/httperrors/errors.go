package httperrors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sir_venger/upload_lite/internal/models"
)

// Write сопоставляет доменные ошибки HTTP-кодам и пишет ответ.
func Write(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidMetadata):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrOutOfRange):
		http.Error(w, err.Error(), http.StatusRequestedRangeNotSatisfiable)
	case errors.Is(err, models.ErrInvalidState), errors.Is(err, models.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrResourceExhausted):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, models.ErrCoverage):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		if containsAny(err.Error(), "unexpected chunk length", "must be > 0") {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func containsAny(msg string, needles ...string) bool {
	for _, s := range needles {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
