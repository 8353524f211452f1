package main

import (
	"net/http"
	"time"

	"github.com/JaimeStill/fissure/internal/api"
	"github.com/JaimeStill/fissure/internal/config"
	"github.com/JaimeStill/fissure/internal/infrastructure"
	"github.com/JaimeStill/fissure/pkg/handlers"
	"github.com/JaimeStill/fissure/pkg/module"
)

// Modules are the prefix-mounted handlers served next to the probes.
type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}
	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

type health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// buildRouter creates the root router with liveness and readiness probes.
// Readiness follows the lifecycle: it reports 503 until every startup hook
// has run.
func buildRouter(infra *infrastructure.Infrastructure, version string) *module.Router {
	router := module.NewRouter()
	started := time.Now()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, health{
			Status:  "ok",
			Version: version,
			Uptime:  time.Since(started).Truncate(time.Second).String(),
		})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, health{Status: "not ready"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, health{Status: "ready"})
	})

	return router
}
