package api

import (
	"github.com/JaimeStill/fissure/internal/access"
	"github.com/JaimeStill/fissure/internal/dashboard"
	"github.com/JaimeStill/fissure/internal/sessions"
	"github.com/JaimeStill/fissure/pkg/lifecycle"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sessions  sessions.System
	Access    access.System
	Dashboard dashboard.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	controller := sessions.NewController(
		runtime.Classifier,
		runtime.Audit,
		runtime.Logger,
	)

	sessionsSystem := sessions.New(
		controller,
		runtime.Sessions,
		runtime.Logger,
	)

	accessSystem := access.New(
		runtime.Audit,
		runtime.Logger,
	)

	dashboardSystem := dashboard.New(
		runtime.Audit,
		runtime.Storage,
		runtime.Classifier.Labels().Names(),
		runtime.Report,
		runtime.Pagination,
		runtime.Logger,
	)

	return &Domain{
		Sessions:  sessionsSystem,
		Access:    accessSystem,
		Dashboard: dashboardSystem,
	}
}

// Start registers domain background tasks with the lifecycle coordinator.
func (d *Domain) Start(lc *lifecycle.Coordinator) error {
	return d.Sessions.Start(lc)
}
