package main

import (
	"github.com/spf13/cobra"

	"github.com/JaimeStill/fissure/internal/api"
	"github.com/JaimeStill/fissure/internal/config"
	"github.com/JaimeStill/fissure/internal/infrastructure"
	"github.com/JaimeStill/fissure/pkg/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	config  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "fissure",
		Short: "Confidence-gated defect classification with an audited activity report",
		Long: "Fissure classifies free-text defect descriptions, asking for more detail\n" +
			"until the classifier is confident, and records every access decision and\n" +
			"confident classification in a shared audit log.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "Config file (default fissure.toml or $FISSURE_CONFIG)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log service activity to stderr")

	root.AddCommand(
		newClassifyCmd(flags),
		newAccessCmd(flags),
		newReportCmd(flags),
		newSnapshotCmd(flags),
		newEventsCmd(flags),
	)

	return root
}

// app is the in-process service stack a command runs against.
type app struct {
	cfg    *config.Config
	infra  *infrastructure.Infrastructure
	domain *api.Domain
}

func openApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	load := config.Load
	if flags.config != "" {
		load = func() (*config.Config, error) { return config.LoadFile(flags.config) }
	}

	cfg, err := load()
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	if !flags.verbose {
		logCfg.Level = "warn"
	}
	logger := logging.NewWithWriter(&logCfg, cmd.ErrOrStderr())

	infra, err := infrastructure.NewWithLogger(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := infra.Start(); err != nil {
		return nil, err
	}
	infra.Lifecycle.WaitForStartup()

	return &app{
		cfg:    cfg,
		infra:  infra,
		domain: api.NewDomain(api.NewRuntime(cfg, infra)),
	}, nil
}

func (a *app) Close() error {
	return a.infra.Lifecycle.Shutdown(a.cfg.ShutdownTimeoutDuration())
}
