package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allwin2012/Hr.io/internal/api"
	"github.com/allwin2012/Hr.io/internal/shared/apperror"
	"github.com/allwin2012/Hr.io/internal/shared/contextutil"
)

func staticToken(tok string) api.TokenSource {
	return func() string { return tok }
}

func TestClient_Get(t *testing.T) {
	t.Run("decodes the response and sends auth headers", func(t *testing.T) {
		var gotAuth, gotRequestID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotRequestID = r.Header.Get("X-Request-ID")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"value":"ok"}`))
		}))
		defer srv.Close()

		c := api.New(srv.URL, staticToken("tok-123"))

		var out struct {
			Value string `json:"value"`
		}
		err := c.Get(context.Background(), "/api/ping", &out)

		assert.NoError(t, err)
		assert.Equal(t, "ok", out.Value)
		assert.Equal(t, "Bearer tok-123", gotAuth)
		assert.NotEmpty(t, gotRequestID)
	})

	t.Run("empty token source sends no auth header", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := api.New(srv.URL, staticToken(""))
		assert.NoError(t, c.Get(context.Background(), "/api/ping", nil))
		assert.Empty(t, gotAuth)
	})

	t.Run("propagates a request id from context", func(t *testing.T) {
		var gotRequestID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotRequestID = r.Header.Get("X-Request-ID")
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := api.New(srv.URL, staticToken(""))
		ctx := contextutil.WithRequestID(context.Background(), "rid-42")
		assert.NoError(t, c.Get(ctx, "/api/ping", nil))
		assert.Equal(t, "rid-42", gotRequestID)
	})
}

func TestClient_ErrorMapping(t *testing.T) {
	serve := func(status int, body string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(body))
		}))
	}

	t.Run("flat error body code wins", func(t *testing.T) {
		srv := serve(http.StatusForbidden, `{"code":"FORBIDDEN","message":"nope"}`)
		defer srv.Close()

		err := api.New(srv.URL, staticToken("t")).Get(context.Background(), "/x", nil)
		assert.True(t, apperror.IsForbidden(err))
		assert.EqualError(t, err, "nope")
	})

	t.Run("enveloped error body", func(t *testing.T) {
		srv := serve(http.StatusConflict, `{"error":{"code":"INVALID_STATE","message":"already reviewed"}}`)
		defer srv.Close()

		err := api.New(srv.URL, staticToken("t")).Get(context.Background(), "/x", nil)
		assert.True(t, apperror.IsInvalidState(err))
	})

	t.Run("status decides when the body carries no code", func(t *testing.T) {
		cases := []struct {
			status int
			code   string
		}{
			{http.StatusBadRequest, apperror.CodeInvalidInput},
			{http.StatusUnprocessableEntity, apperror.CodeInvalidInput},
			{http.StatusUnauthorized, apperror.CodeUnauthorized},
			{http.StatusForbidden, apperror.CodeForbidden},
			{http.StatusNotFound, apperror.CodeNotFound},
			{http.StatusConflict, apperror.CodeInvalidState},
			{http.StatusInternalServerError, apperror.CodeTransport},
		}
		for _, tc := range cases {
			srv := serve(tc.status, `{}`)
			err := api.New(srv.URL, staticToken("t")).Get(context.Background(), "/x", nil)
			assert.Equal(t, tc.code, apperror.CodeOf(err), "status %d", tc.status)
			srv.Close()
		}
	})

	t.Run("unreachable server is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		err := api.New(srv.URL, staticToken("t")).Get(context.Background(), "/x", nil)
		assert.True(t, apperror.IsTransport(err))
	})

	t.Run("malformed success body is a transport error", func(t *testing.T) {
		srv := serve(http.StatusOK, `{"broken`)
		defer srv.Close()

		var out map[string]any
		err := api.New(srv.URL, staticToken("t")).Get(context.Background(), "/x", &out)
		assert.True(t, apperror.IsTransport(err))
	})
}

func TestClient_WritesBody(t *testing.T) {
	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := api.New(srv.URL, staticToken("t"))
	err := c.Post(context.Background(), "/x", map[string]string{"k": "v"}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"k":"v"}`, gotBody)
}
