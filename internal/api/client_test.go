package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, testLogger()), srv
}

func TestBearerHeaderAttached(t *testing.T) {
	var gotAuth string
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})
	c.SetTokenSource(staticToken("tok-1"))

	var out map[string]any
	if err := c.GetJSON(context.Background(), "/auth/me", nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestNoHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})
	c.SetTokenSource(staticToken(""))

	if err := c.GetJSON(context.Background(), "/products", nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
}

func TestUnauthorizedInvokesPurgeHook(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	purged := 0
	c.OnUnauthorized(func(context.Context) { purged++ })

	err := c.GetJSON(context.Background(), "/auth/me", nil, nil)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if purged != 1 {
		t.Fatalf("purge hook calls = %d, want 1", purged)
	}
}

func TestStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusInternalServerError, domain.ErrUnavailable},
		{http.StatusBadGateway, domain.ErrUnavailable},
	}
	for _, tc := range cases {
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})
		err := c.GetJSON(context.Background(), "/products/scan/0", nil, nil)
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: got %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on
	c := New(srv.URL, time.Second, testLogger())

	err := c.GetJSON(context.Background(), "/products", nil, nil)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("transport cause missing from error: %v", err)
	}
}

func TestBadRequestDetailSurfaces(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Cet email est déjà utilisé"}`))
	})
	err := c.PostJSON(context.Background(), "/auth/register", map[string]string{}, nil)
	if err == nil || err.Error() != "POST /auth/register: Cet email est déjà utilisé" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostFormEncoding(t *testing.T) {
	var gotType, gotBody string
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Write([]byte(`{"access_token":"t"}`))
	})

	form := url.Values{}
	form.Set("username", "a@b.c")
	form.Set("password", "pw")
	var out map[string]string
	if err := c.PostForm(context.Background(), "/auth/login", form, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotType != "application/x-www-form-urlencoded" {
		t.Fatalf("Content-Type = %q", gotType)
	}
	if gotBody != "password=pw&username=a%40b.c" {
		t.Fatalf("body = %q", gotBody)
	}
	if out["access_token"] != "t" {
		t.Fatalf("decode failed: %v", out)
	}
}

func TestQueryEncoding(t *testing.T) {
	var gotQuery url.Values
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	})

	q := url.Values{}
	q.Set("page", "2")
	var out []any
	if err := c.GetJSON(context.Background(), "/products", q, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery.Get("page") != "2" {
		t.Fatalf("query = %v", gotQuery)
	}
}
