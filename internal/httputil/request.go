package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"diarykeeper/internal/config"
)

// ParseJSON decodes the request body into dest. The body is capped at
// config.MaxRequestBodyBytes.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ReadJSON returns the request body as raw JSON, for handlers that decode
// it themselves.
func ReadJSON(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := ParseJSON(w, r, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
