package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vaughan-dsouza/fileshelf/internal/apperr"
)

// JSON writes a JSON response with status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// JSONError writes {"error": "..."} with a given status.
func JSONError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Error writes err using its apperr kind. Anything outside the taxonomy is
// reported as a bare 500 so driver or filesystem text never reaches the client.
func Error(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		JSONError(w, e.Kind.Status(), e.Message)
		return
	}
	JSONError(w, http.StatusInternalServerError, "internal error")
}

// DecodeJSON parses the JSON body into v and handles invalid JSON.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		JSONError(w, http.StatusBadRequest, "empty request body")
		return http.ErrBodyNotAllowed
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		JSONError(w, http.StatusBadRequest, "invalid JSON")
		return err
	}

	return nil
}
