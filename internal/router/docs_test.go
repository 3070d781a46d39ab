package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pet-adoption/internal/router"

	"github.com/go-chi/chi/v5"
	"github.com/swaggo/swag"
)

// Cada ruta montada bajo /api tiene que figurar en el documento que sirve /api-docs.
func TestAPIDocs_CoverEveryRoute(t *testing.T) {
	raw, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	var doc struct {
		BasePath string                                `json:"basePath"`
		Paths    map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("doc is not valid json: %v", err)
	}
	if doc.BasePath != "/api" {
		t.Fatalf("expected basePath /api, got %q", doc.BasePath)
	}

	routes, ok := router.NewRouter(router.Options{}).(chi.Routes)
	if !ok {
		t.Fatalf("router does not expose chi.Routes")
	}

	seen := 0
	err = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, "/api/") || route == "/api/health" {
			return nil
		}
		path := strings.TrimSuffix(strings.TrimPrefix(route, "/api"), "/")
		seen++
		if _, ok := doc.Paths[path][strings.ToLower(method)]; !ok {
			t.Errorf("%s %s is not documented", method, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if seen != 20 {
		t.Fatalf("expected 20 api routes, walked %d", seen)
	}
}

func TestAPIDocs_ServedAsJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	router.NewRouter(router.Options{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-docs/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not json: %v", err)
	}
	paths, _ := doc["paths"].(map[string]any)
	for _, p := range []string{"/pets/{petID}/photos", "/applications/{applicationID}/status", "/auth/profile"} {
		if _, ok := paths[p]; !ok {
			t.Errorf("missing path %s", p)
		}
	}
}
