package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/fissure/internal/access"
)

func newAccessCmd(root *rootFlags) *cobra.Command {
	var (
		d       access.Decision
		granted bool
		denied  bool
	)

	cmd := &cobra.Command{
		Use:   "access",
		Short: "Record the outcome of an external credential check",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if granted == denied {
				return errors.New("exactly one of --granted or --denied is required")
			}
			d.Granted = granted

			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := a.domain.Access.Record(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for %s at %s %s\n", e.Kind, e.Actor, e.Date(), e.Time())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&d.Actor, "user", "", "User id (required)")
	f.BoolVar(&granted, "granted", false, "Access was granted")
	f.BoolVar(&denied, "denied", false, "Access was denied")
	f.StringVar(&d.Role, "role", "", "Role of the user")
	f.StringVar(&d.Details, "details", "", "Free-text details, e.g. the denial reason")
	_ = cmd.MarkFlagRequired("user")
	cmd.MarkFlagsMutuallyExclusive("granted", "denied")

	return cmd
}
