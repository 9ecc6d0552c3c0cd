package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"photo-inventory/internal/apperr"
)

// MaxJSONBodyBytes caps decoded JSON request bodies
const MaxJSONBodyBytes = 1 << 20

var ErrMalformedBody = apperr.Validation("request body must be valid JSON")

// DecodeJSON decodes the request body into v. Malformed, empty or oversized
// bodies become a validation error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Validation("request body too large")
		}
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return ErrMalformedBody.Wrap(err)
	}
	return nil
}
