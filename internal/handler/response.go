package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskmanager/taskmanager-go/internal/validation"
)

const maxBodyBytes = 1 << 20 // 1MB

type errorBody struct {
	Message string            `json:"message"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) errorBody {
	return errorBody{Message: msg}
}

// decodeJSON reads a size-limited JSON body into v. On failure it writes the error
// response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}

// writeValidationError writes a 400 with the per-field messages when err carries
// validation.Errors, and reports whether it did.
func writeValidationError(w http.ResponseWriter, err error) bool {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorBody{Message: "Validation failed", Errors: errs})
	return true
}

func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
}
