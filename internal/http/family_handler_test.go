package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"familytree/internal/domain"
	"familytree/internal/repository"
	"familytree/internal/service"

	"go.uber.org/zap"
)

func newTestRouter(repo repository.FamiliesRepository) *Router {
	logger := zap.NewNop()
	router := NewRouter(logger)
	router.RegisterFamilyRoutes(NewFamilyHandler(service.NewResolver(repo, logger), logger))
	router.RegisterHealthRoutes()
	return router
}

func seededRouter() *Router {
	repo := repository.NewMemoryFamiliesRepository()
	repo.SeedDemo()
	return newTestRouter(repo)
}

func TestGetFamily_WireShape(t *testing.T) {
	router := seededRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/families/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{
		`"success":true`,
		`"name":"Dupont"`,
		`"gender":"male"`,
		`"birthDate":"1958-03-12"`,
		`"role":"pere"`,
		`"hasOtherFamily":true`,
		`"otherFamilyId":4`,
		`"grandchildren":[{`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %s, got: %s", want, body)
		}
	}

	// exactly one cross-linked child, pointing at family 4
	var resp struct {
		Children []struct {
			ID             int64  `json:"id"`
			HasOtherFamily bool   `json:"hasOtherFamily"`
			OtherFamilyID  *int64 `json:"otherFamilyId"`
		} `json:"children"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	linked := 0
	for _, c := range resp.Children {
		if c.HasOtherFamily {
			linked++
			if c.ID != 7 || c.OtherFamilyID == nil || *c.OtherFamilyID != 4 {
				t.Fatalf("expected child 7 linked to family 4, got %+v", c)
			}
		}
	}
	if linked != 1 {
		t.Fatalf("expected exactly one cross-linked child, got %d", linked)
	}
}

func TestGetFamily_EmptyFamilyMarshalsEmptyArrays(t *testing.T) {
	repo := repository.NewMemoryFamiliesRepository()
	repo.AddFamily(3, "Vide")
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/families/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	for _, want := range []string{`"grandparents":[]`, `"parents":[]`, `"children":[]`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s (not null), got: %s", want, body)
		}
	}
}

func TestGetFamily_NotFound(t *testing.T) {
	router := seededRouter()

	for _, path := range []string{"/api/families/999", "/api/families/abc"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"success":false`) {
			t.Fatalf("%s: expected success:false, got: %s", path, w.Body.String())
		}
	}
}

type brokenRepo struct {
	*repository.MemoryFamiliesRepository
}

func (b *brokenRepo) GetParents(ctx context.Context, familyID int64) ([]domain.Member, error) {
	return nil, errors.New("connection reset")
}

func TestGetFamily_StoreFailureIs500(t *testing.T) {
	repo := repository.NewMemoryFamiliesRepository()
	repo.SeedDemo()
	router := newTestRouter(&brokenRepo{MemoryFamiliesRepository: repo})

	req := httptest.NewRequest(http.MethodGet, "/api/families/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"success":false`) {
		t.Fatalf("expected success:false, got: %s", w.Body.String())
	}
}

func TestListFamilies(t *testing.T) {
	router := seededRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/families", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"count":3`) || !strings.Contains(body, `"name":"Dupont-Martin"`) {
		t.Fatalf("unexpected list body: %s", body)
	}
}

func TestFamilyRoutes_MethodNotAllowed(t *testing.T) {
	router := seededRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/families/1", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestHealthRoutes(t *testing.T) {
	router := seededRouter()

	for _, path := range []string{"/health", "/api/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
			t.Fatalf("%s: unexpected health response %d: %s", path, w.Code, w.Body.String())
		}
	}
}

func TestStaticFallbackServesIndexForUnmatchedRoutes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>tree</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	router := seededRouter()
	router.RegisterStaticFallback(dir)

	for _, path := range []string{"/", "/some/page"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "tree") {
			t.Fatalf("%s: expected index fallback, got %d: %s", path, w.Code, w.Body.String())
		}
	}
}

func TestRequestLoggingSetsRequestID(t *testing.T) {
	handler := RequestLogging(zap.NewNop(), seededRouter())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated X-Request-ID")
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}
