// Package api assembles the API module: the sessions, access and dashboard
// systems, the report archive browser, and the middleware around them.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/fissure/internal/config"
	"github.com/JaimeStill/fissure/internal/infrastructure"
	"github.com/JaimeStill/fissure/pkg/middleware"
	"github.com/JaimeStill/fissure/pkg/module"
	"github.com/JaimeStill/fissure/pkg/routes"
)

// NewModule creates the API module mounted at cfg.API.BasePath.
// The session janitor is registered with the infrastructure lifecycle.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	if err := domain.Start(runtime.Lifecycle); err != nil {
		return nil, fmt.Errorf("domain start failed: %w", err)
	}

	groups := Groups(domain, runtime)

	mux := http.NewServeMux()
	routes.Register(mux, groups...)
	runtime.Logger.Debug("routes registered", "routes", routes.Patterns(groups...))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}

// Groups returns the route groups served by the API module.
func Groups(domain *Domain, runtime *Runtime) []routes.Group {
	archive := newArchiveHandler(runtime.Storage, runtime.Logger)

	return []routes.Group{
		domain.Sessions.Handler(runtime.MaxBodySize).Routes(),
		domain.Access.Handler(runtime.MaxBodySize).Routes(),
		domain.Dashboard.Handler().Routes(),
		archive.routes(),
	}
}
