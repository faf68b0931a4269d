package gateway

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
)

// Envelope fully describes one outbound request, including its retry state.
// It is a value: Retried returns a copy instead of flipping the flag in place.
type Envelope struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	Body        []byte
	ContentType string

	// RequestID overrides the generated X-Request-ID when set.
	RequestID string

	// RetryAttempted is set on the single replay after a credential refresh.
	// A retried request never triggers another refresh.
	RetryAttempted bool
}

// RequestOption customizes an Envelope.
type RequestOption func(*Envelope)

// WithQuery merges query parameters into the request URL.
func WithQuery(q url.Values) RequestOption {
	return func(e *Envelope) {
		for k, vs := range q {
			for _, v := range vs {
				e.Query.Add(k, v)
			}
		}
	}
}

// WithQueryParam adds a single query parameter.
func WithQueryParam(key, value string) RequestOption {
	return func(e *Envelope) { e.Query.Add(key, value) }
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(e *Envelope) { e.Header.Set(key, value) }
}

// WithRawBody sends body as-is with the given content type instead of
// JSON-encoding the body argument. Used for multipart uploads.
func WithRawBody(contentType string, body []byte) RequestOption {
	return func(e *Envelope) {
		e.ContentType = contentType
		e.Body = body
	}
}

// WithRequestIDOverride pins the X-Request-ID for this request.
func WithRequestIDOverride(id string) RequestOption {
	return func(e *Envelope) { e.RequestID = id }
}

// NewEnvelope builds an envelope with RetryAttempted = false.
// A non-nil body is encoded as JSON unless WithRawBody is used. The body is
// held as bytes so the request can be replayed after a refresh.
func NewEnvelope(method, path string, body any, opts ...RequestOption) (Envelope, error) {
	env := Envelope{
		Method: method,
		Path:   path,
		Query:  url.Values{},
		Header: http.Header{},
	}

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Envelope{}, fmt.Errorf("gateway: encode %s %s body: %w", method, path, err)
		}
		env.Body = data
		env.ContentType = "application/json"
	}

	for _, opt := range opts {
		opt(&env)
	}

	return env, nil
}

// Retried returns a copy marked as the post-refresh replay.
func (e Envelope) Retried() Envelope {
	c := e.clone()
	c.RetryAttempted = true
	return c
}

func (e Envelope) clone() Envelope {
	c := e
	c.Query = url.Values(maps.Clone(map[string][]string(e.Query)))
	c.Header = e.Header.Clone()
	c.Body = slices.Clone(e.Body)
	return c
}
