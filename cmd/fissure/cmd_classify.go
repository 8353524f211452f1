package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/fissure/internal/sessions"
	"github.com/JaimeStill/fissure/pkg/auditlog"
	"github.com/JaimeStill/fissure/pkg/formatting"
	"github.com/JaimeStill/fissure/pkg/tables"
)

func newClassifyCmd(root *rootFlags) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "classify [description...]",
		Short: "Classify a defect description, refining until the result is confident",
		Long: "Classify a defect description. While confidence stays below the threshold,\n" +
			"enter more detail to refine, an empty line to retry, or q to abandon.\n" +
			"Without arguments the description is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			return runClassify(cmd, a.domain.Sessions, user, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Operator id recorded in the audit log")
	return cmd
}

func runClassify(cmd *cobra.Command, sys sessions.System, user, text string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())

	if strings.TrimSpace(text) == "" {
		fmt.Fprint(out, "Describe the defect: ")
		line, ok := readLine(in)
		if !ok {
			return sessions.ErrEmptyInput
		}
		text = line
	}

	state, step, err := sys.Open(ctx, user, text)
	if state.ID == uuid.Nil {
		return err
	}

	for {
		switch {
		case errors.Is(err, sessions.ErrClassifierUnavailable):
			fmt.Fprintf(out, "Classifier unavailable: %v\n", err)
			fmt.Fprintln(out, "Press Enter to retry, add detail, or q to abandon.")
		case err != nil:
			return err
		default:
			printStep(out, state, step)
			if step.Status == sessions.StatusResolved {
				return nil
			}
			fmt.Fprintf(out, "Confidence below %s. Add detail, press Enter to retry, or q to abandon.\n",
				auditlog.FormatConfidence(sessions.ConfidenceThreshold))
		}

		fmt.Fprint(out, "> ")
		line, ok := readLine(in)
		if !ok || line == "q" {
			if _, err := sys.Abandon(state.ID); err != nil {
				return err
			}
			fmt.Fprintln(out, "Session abandoned.")
			return nil
		}

		if line == "" {
			state, step, err = sys.Retry(ctx, state.ID)
		} else {
			state, step, err = sys.Refine(ctx, state.ID, line)
		}
		if errors.Is(err, sessions.ErrEmptyInput) {
			fmt.Fprintln(out, "Nothing to add.")
		}
	}
}

func printStep(out io.Writer, state sessions.State, step sessions.Step) {
	r := step.Result

	t := tables.New(tables.ASCII)
	t.Header("Label", "Score")
	t.Columns(tables.Column{Number: 2, Align: tables.AlignRight})
	for i, name := range r.Labels().Names() {
		t.Row(name, auditlog.FormatConfidence(r.Vector()[i]))
	}

	fmt.Fprintf(out, "Attempt %d: %s (%s)\n", len(state.Attempts), r.Label(), auditlog.FormatConfidence(r.Confidence()))
	fmt.Fprintln(out, t.String())

	if step.Status == sessions.StatusResolved {
		fmt.Fprintf(out, "Resolved as %s for %q.\n", r.Label(), formatting.Truncate(state.Text, 50))
		if step.AuditErr != nil {
			fmt.Fprintf(out, "Warning: result not written to the audit log: %v\n", step.AuditErr)
		}
	}
}

func readLine(s *bufio.Scanner) (string, bool) {
	if !s.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.Text()), true
}
