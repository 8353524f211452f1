package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/fissure/internal/dashboard"
	"github.com/JaimeStill/fissure/pkg/formatting"
)

func newReportCmd(root *rootFlags) *cobra.Command {
	var (
		format  string
		outPath string
		archive bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the activity report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			f := a.cfg.Report.Format()
			if format != "" {
				if f, err = dashboard.ParseFormat(format); err != nil {
					return err
				}
			}

			data, err := a.domain.Dashboard.Export(cmd.Context(), f)
			if err != nil {
				return err
			}

			if outPath == "" {
				if _, err := cmd.OutOrStdout().Write(append(data, '\n')); err != nil {
					return err
				}
			} else {
				if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				if err := os.WriteFile(outPath, data, 0644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", outPath)
			}

			if archive {
				archived, err := a.domain.Dashboard.Archive(cmd.Context())
				if err != nil {
					return err
				}
				for _, r := range archived {
					fmt.Fprintf(cmd.ErrOrStderr(), "Archived %s (%s) to %s\n", r.Key, formatting.FormatBytes(int64(r.Size), 1), a.infra.Storage.Location())
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "", "Output format: text, markdown, json, yaml (default from config)")
	f.StringVarP(&outPath, "out", "o", "", "Write the report to a file instead of stdout")
	f.BoolVar(&archive, "archive", false, "Also upload the report in every format to archive storage")

	return cmd
}

func newSnapshotCmd(root *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the aggregate statistics of the audit log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := dashboard.ParseFormat(format)
			if err != nil {
				return err
			}
			if f != dashboard.FormatJSON && f != dashboard.FormatYAML {
				return fmt.Errorf("%w: snapshot supports json and yaml", dashboard.ErrUnknownFormat)
			}

			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.domain.Dashboard.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if f == dashboard.FormatYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(snap); err != nil {
					return err
				}
				return enc.Close()
			}
			return writeJSON(out, snap)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	return cmd
}
