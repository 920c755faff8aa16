package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplegest/internal/model"
)

func TestURLNormalization(t *testing.T) {
	c := New("http://backend:3000///")

	assert.Equal(t, "http://backend:3000", c.BaseURL())
	assert.Equal(t, "http://backend:3000/api/articulos", c.URL("/api/articulos"))
	assert.Equal(t, "http://backend:3000/api/articulos", c.URL("articulos"))
	assert.Equal(t, "http://backend:3000/api/articulos", c.URL("///articulos"))
	assert.Equal(t, "/api/usuarios", New("").URL("usuarios"))
}

func TestDoSendsJSONHeadersAndToken(t *testing.T) {
	var got *http.Request
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := ContextWithToken(context.Background(), "tok-123")
	var out map[string]bool
	err := c.Do(ctx, "ping", Options{
		Method:  http.MethodPost,
		Headers: map[string]string{"X-Trace": "1"},
		Body:    map[string]string{"a": "b"},
	}, &out)

	require.NoError(t, err)
	assert.True(t, out["ok"])
	assert.Equal(t, "/api/ping", got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "Bearer tok-123", got.Header.Get("Authorization"))
	assert.Equal(t, "1", got.Header.Get("X-Trace"))
	assert.Equal(t, "b", body["a"])
}

func TestDoCallerHeadersOverrideContentType(t *testing.T) {
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := New(srv.URL).Do(context.Background(), "x", Options{
		Headers: map[string]string{"Content-Type": "text/plain"},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "text/plain", contentType)
}

func TestDoNonSuccessCarriesBodyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Credenciales inválidas"}`)
	}))
	defer srv.Close()

	err := New(srv.URL).Do(context.Background(), "auth/login", Options{Method: http.MethodPost}, nil)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, `{"message":"Credenciales inválidas"}`, reqErr.Error())
	assert.Equal(t, "Credenciales inválidas", reqErr.Message())
	assert.Equal(t, "Credenciales inválidas", UserMessage(err, "fallback"))
}

func TestDoNonSuccessEmptyBodyUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL).Do(context.Background(), "x", Options{}, nil)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Error desconocido", reqErr.Message())
}

func TestDoTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url).Do(context.Background(), "x", Options{}, nil)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, ErrUnavailable.Error(), UserMessage(err, "fallback"))
}

func TestDecodeListAcceptsArrayAndDocs(t *testing.T) {
	items, err := decodeList[model.Loan]([]byte(`[{"codigoPrestamo":"P1"}]`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "P1", items[0].Code)

	items, err = decodeList[model.Loan]([]byte(`{"docs":[{"codigoPrestamo":"P2"},{"codigoPrestamo":"P3"}],"total":2}`))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = decodeList[model.Loan]([]byte(`{"items":[]}`))
	assert.ErrorIs(t, err, ErrInvalidListFormat)

	_, err = decodeList[model.Loan]([]byte(`"nope"`))
	assert.ErrorIs(t, err, ErrInvalidListFormat)
}

func TestListAllRequestsDecodesPopulatedAndBareReferences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/solicitudes/todas", r.URL.Path)
		_, _ = io.WriteString(w, `{"docs":[{"_id":"s1","estado":"En revisión","materiales":[
			{"codigoArticulo":"a1","cantidad":2},
			{"codigoArticulo":{"_id":"a2","codigoArticulo":"M002","nombreArticulo":"Clavos","stock":4},"cantidad":1,"hayMaterial":true}
		]}]}`)
	}))
	defer srv.Close()

	reqs, err := New(srv.URL).ListAllRequests(context.Background())

	require.NoError(t, err)
	require.Len(t, reqs, 1)
	lines := reqs[0].Materials
	require.Len(t, lines, 2)
	assert.Equal(t, "a1", lines[0].Article.Key())
	assert.Nil(t, lines[0].Article.Article)
	assert.Equal(t, "a2", lines[1].Article.Key())
	assert.Equal(t, "M002", lines[1].Article.Code())
	assert.Equal(t, "Clavos", lines[1].Article.Label())
	require.NotNil(t, lines[1].HayMaterial)
	assert.True(t, *lines[1].HayMaterial)
	assert.Equal(t, model.StatusInReview, reqs[0].Status)
}

func TestEndpointPathsAndBodies(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]any
	}
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{r.Method, r.URL.Path, body})
		switch r.URL.Path {
		case "/api/usuarios/u1":
			_, _ = io.WriteString(w, `{"msg":"Usuario eliminado"}`)
		default:
			_, _ = io.WriteString(w, `{}`)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.UpdateArticleStock(ctx, "a1", 7)
	require.NoError(t, err)
	_, err = c.UpdateRequestMaterial(ctx, "s1", 2, 5)
	require.NoError(t, err)
	_, err = c.UpdateRequestStatus(ctx, "s1", model.StatusApproved)
	require.NoError(t, err)
	_, err = c.UpdateLoan(ctx, "p1", model.LoanDelivery{Delivered: model.DeliveredYes, ReturnDate: "2026-10-16"})
	require.NoError(t, err)
	msg, err := c.DeleteUser(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, c.DeleteArticle(ctx, "a1"))

	assert.Equal(t, "Usuario eliminado", msg)
	require.Len(t, calls, 6)
	assert.Equal(t, call{http.MethodPut, "/api/articulos/a1/stock", map[string]any{"stock": float64(7)}}, calls[0])
	assert.Equal(t, call{http.MethodPut, "/api/solicitudes/s1/materiales/2", map[string]any{"cantidad": float64(5)}}, calls[1])
	assert.Equal(t, call{http.MethodPut, "/api/solicitudes/s1/estado", map[string]any{"estado": "Aprobado"}}, calls[2])
	assert.Equal(t, call{http.MethodPut, "/api/prestamos/p1", map[string]any{"entregado": "Si", "fechaDevolucion": "2026-10-16"}}, calls[3])
	assert.Equal(t, http.MethodDelete, calls[4].method)
	assert.Equal(t, "/api/articulos/a1", calls[5].path)
}

func TestUserMessageFallback(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "x"))
	assert.Equal(t, "x", UserMessage(errors.New("boom"), "x"))
}
