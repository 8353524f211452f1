package main

import (
	"time"

	"github.com/JaimeStill/fissure/internal/config"
	"github.com/JaimeStill/fissure/internal/infrastructure"
	"github.com/JaimeStill/fissure/pkg/formatting"
)

// Server ties the infrastructure, the mounted modules and the HTTP listener
// to one lifecycle.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra, cfg.Version)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"modules", router.Prefixes(),
		"labels", infra.Classifier.Labels().String(),
		"audit_log", infra.Audit.Path(),
		"archive", infra.Storage.Location(),
		"max_body", formatting.FormatBytes(cfg.API.MaxBodySizeBytes(), 0),
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start opens the audit log and archive, then binds the listener. Readiness
// is logged once every startup hook has completed.
func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready", "addr", s.http.Addr())
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
