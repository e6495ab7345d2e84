package api

import (
	"encoding/json"
	"fmt"
	"io"
)

// Metadata carries pagination info for list endpoints.
type Metadata struct {
	Page     int `json:"page"`
	Size     int `json:"size"`
	Elements int `json:"elements"`
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	BusinessCode string          `json:"businessCode"`
	Message      string          `json:"message"`
	TraceID      string          `json:"traceId"`
	Data         json.RawMessage `json:"data"`
	Metadata     *Metadata       `json:"metadata"`
}

// Page is a decoded slice of a paginated collection.
type Page[T any] struct {
	Items    []T
	Page     int
	Size     int
	Elements int
}

// decodeEnvelope reads the response body and unwraps the data field into
// out. A null or absent data field leaves out at its zero value, matching
// the degrade-to-empty contract for partial payloads.
func decodeEnvelope(body io.Reader, out any) (*Metadata, error) {
	var env envelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return env.Metadata, nil
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data (businessCode=%s): %w", env.BusinessCode, err)
		}
	}
	return env.Metadata, nil
}
