package api

import (
	"github.com/JaimeStill/fissure/internal/config"
	"github.com/JaimeStill/fissure/internal/dashboard"
	"github.com/JaimeStill/fissure/internal/infrastructure"
	"github.com/JaimeStill/fissure/internal/sessions"
	"github.com/JaimeStill/fissure/pkg/pagination"
)

// Runtime is the infrastructure seen by the API domain, plus the config
// sections its systems read.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination  pagination.Config
	Sessions    sessions.Config
	Report      dashboard.Config
	MaxBodySize int64
}

// NewRuntime scopes infra's logger to the API module.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: infra.Scoped("module", "api"),
		Pagination:     cfg.API.Pagination,
		Sessions:       cfg.Sessions,
		Report:         cfg.Report,
		MaxBodySize:    cfg.API.MaxBodySizeBytes(),
	}
}
