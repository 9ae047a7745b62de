package utils

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteRequestError writes a 400 for a body that failed to decode or validate,
// including per-field messages when there are any.
func WriteRequestError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  verr.Message,
			"fields": verr.Fields,
		})
		return
	}
	WriteError(w, http.StatusBadRequest, err.Error())
}
