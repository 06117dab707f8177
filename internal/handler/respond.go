package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/seamark/curio/internal/domain"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		// Encode errors past this point cannot change the status line.
		_ = json.NewEncoder(w).Encode(v)
	}
}

// DecodeJSON reads the request body into v. Malformed or oversized
// bodies map to EINVALID so handlers can pass the error straight to
// ErrorResponse.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return domain.Invalid("request.decode", "request body too large")
		}
		if errors.Is(err, io.EOF) {
			return domain.Invalid("request.decode", "request body is required")
		}
		return domain.Invalid("request.decode", "malformed JSON body")
	}
	return nil
}
