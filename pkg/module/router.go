package module

import (
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Router dispatches requests to mounted modules by path prefix,
// falling back to a native ServeMux for unmatched paths.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

// NewRouter creates a Router with an empty module map and native fallback mux.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers a handler on the native fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount registers a module to handle requests matching its prefix.
func (r *Router) Mount(m *Module) {
	r.modules[m.prefix] = m
}

// ServeHTTP dispatches to the matching module or falls back to the native mux.
// A trailing slash is dropped before matching.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if path, trimmed := trimTrailingSlash(req.URL.Path); trimmed {
		req = withPath(req, path)
	}

	if m, ok := r.modules[extractPrefix(req.URL.Path)]; ok {
		m.Serve(w, req)
		return
	}

	r.native.ServeHTTP(w, req)
}

func extractPrefix(path string) string {
	parts := strings.SplitN(path, "/", 3)
	if len(parts) >= 2 {
		return "/" + parts[1]
	}
	return path
}

func trimTrailingSlash(path string) (string, bool) {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return strings.TrimSuffix(path, "/"), true
	}
	return path, false
}

// Prefixes returns the sorted prefixes of all mounted modules.
func (r *Router) Prefixes() []string {
	return slices.Sorted(maps.Keys(r.modules))
}
