package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is the normalized result of a successful call.
// The API wraps most payloads as {"data": ..., "success": ..., "message": ...};
// Data holds the unwrapped payload, or the whole body when it is not wrapped.
type Response struct {
	Status    int
	Data      json.RawMessage
	Success   bool
	Message   string
	RequestID string
	Header    http.Header
}

// Decode unmarshals Data into v. An empty payload leaves v untouched.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Data) == 0 || bytes.Equal(r.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

// DecodeInto unmarshals the response payload into a new T.
func DecodeInto[T any](r *Response) (T, error) {
	var v T
	err := r.Decode(&v)
	return v, err
}

type wrapped struct {
	Data    json.RawMessage `json:"data"`
	Success *bool           `json:"success"`
	Message string          `json:"message"`
}

// normalize turns a 2xx body into a Response.
func normalize(status int, header http.Header, body []byte) *Response {
	resp := &Response{Status: status, Success: true, Header: header}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return resp
	}

	if !json.Valid(body) {
		// Plain-text bodies become a JSON string so Decode keeps working.
		resp.Data, _ = json.Marshal(string(body))
		return resp
	}

	resp.Data = body
	if body[0] != '{' {
		return resp
	}

	var w wrapped
	if err := json.Unmarshal(body, &w); err != nil {
		return resp
	}
	if w.Success != nil {
		resp.Success = *w.Success
	}
	resp.Message = w.Message
	if len(w.Data) > 0 && !bytes.Equal(w.Data, []byte("null")) {
		resp.Data = w.Data
	}

	return resp
}

// errorMessage extracts a human readable message from an error body.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		switch e := payload.Error.(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if m, ok := e["message"].(string); ok && m != "" {
				return m
			}
		}
	}

	if text := string(bytes.TrimSpace(body)); text != "" && len(text) <= 512 && !json.Valid(body) {
		return text
	}
	return http.StatusText(status)
}
