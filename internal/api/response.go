package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/erazemk/pantrypal/internal/validate"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

type fieldErrorResponse struct {
	Error  string          `json:"error"`
	Fields validate.Errors `json:"fields"`
}

// fieldErrors writes a validation failure listing every rejected input.
func fieldErrors(w http.ResponseWriter, status int, message string, errs validate.Errors) {
	jsonResponse(w, status, fieldErrorResponse{Error: message, Fields: errs})
}

// invalidForm writes a 400 for err if it carries field errors and reports
// whether it did.
func invalidForm(w http.ResponseWriter, err error) bool {
	errs, ok := validate.AsErrors(err)
	if !ok {
		return false
	}
	fieldErrors(w, http.StatusBadRequest, errs[0].Message, errs)
	return true
}

type messageResponse struct {
	Message string `json:"message"`
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
