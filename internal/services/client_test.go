package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmchugh/medlib/internal/shared"
	tu "github.com/dmchugh/medlib/internal/testing/httpmock"
)

func TestClient(t *testing.T) {
	t.Run("NewClient", func(t *testing.T) {
		t.Run("defaults base URL and http client", func(t *testing.T) {
			client := NewClient("", nil)

			if client.BaseURL() != defaultBaseURL {
				t.Errorf("expected default base URL, got %s", client.BaseURL())
			}
			if client.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient")
			}
		})

		t.Run("strips trailing slash", func(t *testing.T) {
			client := NewClient("http://media.local:9000/", nil)

			if client.BaseURL() != "http://media.local:9000" {
				t.Errorf("expected trailing slash stripped, got %s", client.BaseURL())
			}
		})
	})

	t.Run("token slot", func(t *testing.T) {
		client := NewClient("", nil)

		if client.Token() != "" {
			t.Error("expected empty token initially")
		}

		client.SetToken("abc")
		if client.Token() != "abc" {
			t.Errorf("expected token to be set, got %s", client.Token())
		}

		client.SetToken("")
		if client.Token() != "" {
			t.Error("expected token to be cleared")
		}
	})

	t.Run("doJSON", func(t *testing.T) {
		t.Run("sends bearer token and API prefix", func(t *testing.T) {
			var gotPath, gotAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				fmt.Fprint(w, `{"ok": true}`)
			}))
			defer server.Close()

			client := NewClient(server.URL, server.Client())
			client.SetToken("tok-1")

			var result map[string]bool
			if err := client.doJSON(context.Background(), http.MethodGet, "/media", nil, nil, &result, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotPath != "/api/v1/media" {
				t.Errorf("expected API prefix on path, got %s", gotPath)
			}
			if gotAuth != "Bearer tok-1" {
				t.Errorf("expected bearer header, got %q", gotAuth)
			}
			if !result["ok"] {
				t.Error("expected decoded response")
			}
		})

		t.Run("maps status codes onto the error taxonomy", func(t *testing.T) {
			notFound := errors.New("thing not found")

			cases := []struct {
				status   int
				notFound error
				want     error
			}{
				{http.StatusUnauthorized, nil, shared.ErrTokenExpired},
				{http.StatusForbidden, nil, shared.ErrNotAuthenticated},
				{http.StatusNotFound, notFound, notFound},
				{http.StatusNotFound, nil, shared.ErrAPIRequest},
				{http.StatusBadRequest, nil, shared.ErrInvalidInput},
				{http.StatusUnprocessableEntity, nil, shared.ErrInvalidInput},
				{http.StatusInternalServerError, nil, shared.ErrAPIRequest},
			}

			for _, tc := range cases {
				t.Run(fmt.Sprintf("status %d", tc.status), func(t *testing.T) {
					server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						w.WriteHeader(tc.status)
					}))
					defer server.Close()

					client := NewClient(server.URL, server.Client())
					err := client.doJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil, tc.notFound)

					if !errors.Is(err, tc.want) {
						t.Errorf("expected %v, got %v", tc.want, err)
					}
				})
			}
		})

		t.Run("surfaces the server detail message", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"detail": "page must be positive"}`)
			}))
			defer server.Close()

			client := NewClient(server.URL, server.Client())
			err := client.doJSON(context.Background(), http.MethodGet, "/media", nil, nil, nil, nil)

			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if !strings.Contains(err.Error(), "page must be positive") {
				t.Errorf("expected detail in error, got %v", err)
			}
		})

		t.Run("wraps transport errors", func(t *testing.T) {
			httpClient := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused")),
			}

			client := NewClient("http://localhost:1", httpClient)
			err := client.doJSON(context.Background(), http.MethodGet, "/media", nil, nil, nil, nil)

			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected API request error, got %v", err)
			}
		})
	})
}
