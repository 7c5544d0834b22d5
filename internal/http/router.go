package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Router wraps the standard library ServeMux.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterFamilyRoutes wires the family API.
func (r *Router) RegisterFamilyRoutes(h *FamilyHandler) {
	r.Handle("/api/families", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListFamilies(w, req)
	})

	// family/{id}
	r.Handle("/api/families/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(req.URL.Path, "/api/families/")
		if id == "" || strings.Contains(id, "/") {
			writeJSON(w, http.StatusNotFound, errorResponse{Success: false, Error: "family not found"})
			return
		}
		h.GetFamily(w, req, id)
	})
}

// RegisterHealthRoutes exposes the liveness probe on both paths the
// clients use.
func (r *Router) RegisterHealthRoutes() {
	health := func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "familytree"})
	}
	r.Handle("/api/health", health)
	r.Handle("/health", health)
}

// RegisterStaticFallback serves files under dir and falls back to the SPA
// entry point for every route nothing else matched.
func (r *Router) RegisterStaticFallback(dir string) {
	index := filepath.Join(dir, "index.html")
	r.Handle("/", func(w http.ResponseWriter, req *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+req.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, req, path)
			return
		}
		http.ServeFile(w, req, index)
	})
}
