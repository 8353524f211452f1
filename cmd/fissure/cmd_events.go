package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/fissure/pkg/auditlog"
	"github.com/JaimeStill/fissure/pkg/formatting"
	"github.com/JaimeStill/fissure/pkg/tables"
)

func newEventsCmd(root *rootFlags) *cobra.Command {
	var (
		kind   string
		actor  string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the most recent audit log events, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if kind != "" && !auditlog.Kind(kind).Known() {
				return fmt.Errorf("unknown event kind %q", kind)
			}

			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := a.infra.Audit.ReadAll(cmd.Context())
			if err != nil {
				return err
			}

			selected := selectEvents(events, auditlog.Kind(kind), actor, limit)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), selected)
			}
			fmt.Fprintln(cmd.OutOrStdout(), eventsTable(selected))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&kind, "kind", "", "Only events of this kind")
	f.StringVar(&actor, "actor", "", "Only events by this actor")
	f.IntVarP(&limit, "limit", "n", 20, "Maximum number of events")
	f.BoolVar(&asJSON, "json", false, "Print events as JSON")

	return cmd
}

func selectEvents(events []auditlog.Event, kind auditlog.Kind, actor string, limit int) []auditlog.Event {
	out := []auditlog.Event{}
	for i := len(events) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		e := events[i]
		if kind != "" && e.Kind != kind {
			continue
		}
		if actor != "" && e.Actor != actor {
			continue
		}
		out = append(out, e)
	}
	return out
}

func eventsTable(events []auditlog.Event) string {
	if len(events) == 0 {
		return "(no events)"
	}

	t := tables.New(tables.ASCII)
	t.Header("Date", "Time", "Actor", "Kind", "Details")
	for _, e := range events {
		t.Row(e.Date(), e.Time(), e.Actor, string(e.Kind), eventDetails(e))
	}
	return t.String()
}

func eventDetails(e auditlog.Event) string {
	if p, ok := e.Classification(); ok {
		return fmt.Sprintf("%s %s: %s", p.ResultLabel, p.Confidence, formatting.Truncate(p.Description, 40))
	}
	if p, ok := e.Access(); ok {
		return strings.TrimSpace(p.Role + " " + p.Details)
	}

	parts := make([]string, 0, len(e.Payload))
	for _, k := range slices.Sorted(maps.Keys(e.Payload)) {
		parts = append(parts, k+"="+e.Payload[k])
	}
	return strings.Join(parts, " ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
