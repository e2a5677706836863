package handlers

import (
	"encoding/json"
	"net/http"

	gferrors "github.com/fulmenhq/gofulmen/errors"
)

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON decodes a request body into dst, returning a validation
// envelope on malformed input.
func decodeJSON(r *http.Request, dst any) *gferrors.ErrorEnvelope {
	if r.Body == nil {
		return gferrors.NewErrorEnvelope("VALIDATION_FAILED", "request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		envelope := gferrors.NewErrorEnvelope("VALIDATION_FAILED", "invalid JSON body")
		envelope, _ = envelope.WithContext(map[string]interface{}{
			"decode_error": err.Error(),
		})
		return envelope
	}
	return nil
}

// MessageResponse is the generic acknowledgment body.
type MessageResponse struct {
	Message string `json:"message"`
}
