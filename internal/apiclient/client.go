// Package apiclient talks to the SimpleGest REST backend. Every path is rooted at /api.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// fallbackMessage is used when a failed response has no readable body
const fallbackMessage = "Error desconocido"

var (
	// ErrUnavailable wraps transport failures: the backend could not be reached
	ErrUnavailable = errors.New("error de conexión con el servidor")
	// ErrInvalidListFormat is returned when a list endpoint answers neither an array nor {docs: [...]}
	ErrInvalidListFormat = errors.New("el formato de respuesta no es válido")
)

// RequestError is a non-2xx answer from the backend
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return e.Body
}

// Message extracts the server-provided message from a JSON error body,
// falling back to the raw body text.
func (e *RequestError) Message() string {
	var payload struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.Msg != "":
			return payload.Msg
		case payload.Error != "":
			return payload.Error
		}
	}
	if strings.TrimSpace(e.Body) == "" {
		return fallbackMessage
	}
	return e.Body
}

// Options customizes a single request, like fetch's RequestInit
type Options struct {
	Method  string
	Headers map[string]string
	Body    any
}

// Client issues JSON requests against a configured base URL
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request. Zero keeps requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d, Transport: c.httpClient.Transport}
		}
	}
}

// New creates a Client for baseURL. An empty base yields relative /api URLs.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL builds the absolute URL for endpoint, always under /api
func (c *Client) URL(endpoint string) string {
	return c.baseURL + normalizePath(endpoint)
}

func normalizePath(endpoint string) string {
	if strings.HasPrefix(endpoint, "/api") {
		return endpoint
	}
	return "/api/" + strings.TrimLeft(endpoint, "/")
}

type tokenKey struct{}

// ContextWithToken attaches the session token sent as a bearer credential
func ContextWithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token set by ContextWithToken
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Do issues the request and decodes a successful JSON answer into out (which may be nil).
func (c *Client) Do(ctx context.Context, endpoint string, opts Options, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(endpoint), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, readErr := io.ReadAll(resp.Body)
		if readErr != nil || len(text) == 0 {
			return &RequestError{StatusCode: resp.StatusCode, Body: fallbackMessage}
		}
		return &RequestError{StatusCode: resp.StatusCode, Body: string(text)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

// decodeList accepts either a bare JSON array or a {docs: [...]} page
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrInvalidListFormat
	}
	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		var page struct {
			Docs *[]T `json:"docs"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, err
		}
		if page.Docs == nil {
			return nil, ErrInvalidListFormat
		}
		return *page.Docs, nil
	default:
		return nil, ErrInvalidListFormat
	}
}

// UserMessage converts any client error into text fit for a notification
func UserMessage(err error, fallback string) string {
	var reqErr *RequestError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &reqErr):
		return reqErr.Message()
	case errors.Is(err, ErrUnavailable):
		return ErrUnavailable.Error()
	default:
		return fallback
	}
}
