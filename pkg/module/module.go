// Package module mounts self-contained HTTP handlers under single-level
// path prefixes and dispatches to them from a Router.
package module

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/fissure/pkg/middleware"
)

// Module serves an inner router below a fixed prefix. The prefix is stripped
// before the request reaches the router, and the module's middleware wraps
// only its own routes.
type Module struct {
	prefix     string
	router     http.Handler
	middleware *middleware.Stack

	once    sync.Once
	handler http.Handler
}

// New creates a Module for a single-level prefix such as "/api".
// It panics on an empty, root, relative or nested prefix.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Handler returns the inner router wrapped with the module's middleware.
// The chain is built on first use; middleware added afterwards is ignored.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.handler = m.middleware.Apply(m.router)
	})
	return m.handler
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Serve strips the prefix and dispatches to the wrapped router.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, withPath(req, stripPrefix(req.URL.Path, m.prefix)))
}

// Use adds middleware to the module. Call it before the first request.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

func withPath(req *http.Request, path string) *http.Request {
	u := *req.URL
	u.Path = path
	u.RawPath = ""

	r := req.Clone(req.Context())
	r.URL = &u
	return r
}

func stripPrefix(fullPath, prefix string) string {
	path := strings.TrimPrefix(fullPath, prefix)
	if path == "" {
		return "/"
	}
	return path
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case prefix == "/":
		return fmt.Errorf("module prefix must name a sub-path: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
