package dashboard_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/fissure/internal/dashboard"
	"github.com/JaimeStill/fissure/pkg/auditlog"
)

var declared = []string{"arrufo", "puntual"}

func defaultOptions() dashboard.Options {
	return dashboard.Options{Labels: declared, RecentLimit: 10, TruncateAt: 50}
}

func TestGenerateReportEmpty(t *testing.T) {
	doc := dashboard.GenerateReport(dashboard.Aggregate(nil), nil, base, defaultOptions())

	want := []dashboard.LabelRow{
		{Label: "arrufo", Count: 0, Percent: 0},
		{Label: "puntual", Count: 0, Percent: 0},
	}
	if diff := cmp.Diff(want, doc.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if doc.Counters != (dashboard.Counters{}) {
		t.Errorf("Counters = %+v, want zero", doc.Counters)
	}
	if len(doc.Users) != 0 || len(doc.Recent) != 0 {
		t.Errorf("got %d users and %d recent rows, want none", len(doc.Users), len(doc.Recent))
	}
}

func TestGenerateReportPercentages(t *testing.T) {
	events := []auditlog.Event{
		classified("a", "x", "A", "95.00%", 0),
		classified("a", "y", "B", "95.00%", 1),
		classified("a", "z", "A", "95.00%", 2),
	}
	opts := dashboard.Options{Labels: []string{"A", "B"}, RecentLimit: 10, TruncateAt: 50}

	doc := dashboard.GenerateReport(dashboard.Aggregate(events), events, base, opts)

	want := []dashboard.LabelRow{
		{Label: "A", Count: 2, Percent: 66.7},
		{Label: "B", Count: 1, Percent: 33.3},
	}
	if diff := cmp.Diff(want, doc.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateReportLabelOrder(t *testing.T) {
	events := []auditlog.Event{
		classified("a", "x", "zeta", "95.00%", 0),
		classified("a", "y", "puntual", "95.00%", 1),
		classified("a", "z", "beta", "95.00%", 2),
	}

	doc := dashboard.GenerateReport(dashboard.Aggregate(events), nil, base, defaultOptions())

	var got []string
	for _, l := range doc.Labels {
		got = append(got, l.Label)
	}
	want := []string{"arrufo", "puntual", "beta", "zeta"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("label order mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateReportSections(t *testing.T) {
	long := strings.Repeat("ñ", 60)
	events := []auditlog.Event{
		granted("zoe", 0),
		granted("ana", 1),
		classified("zoe", long, "arrufo", "93.45%", 2),
		classified("ana", "corto", "puntual", "90.00%", 3),
	}
	snap := dashboard.Aggregate(events)
	recent := dashboard.RecentClassifications(events, 10)

	doc := dashboard.GenerateReport(snap, recent, base, defaultOptions())

	wantCounters := dashboard.Counters{Accesses: 2, Classifications: 2, DistinctUsers: 2}
	if doc.Counters != wantCounters {
		t.Errorf("Counters = %+v, want %+v", doc.Counters, wantCounters)
	}

	wantUsers := []dashboard.UserRow{
		{User: "ana", Accesses: 1, Classifications: 1},
		{User: "zoe", Accesses: 1, Classifications: 1},
	}
	if diff := cmp.Diff(wantUsers, doc.Users); diff != "" {
		t.Errorf("users mismatch (-want +got):\n%s", diff)
	}

	wantRecent := []dashboard.RecentRow{
		{N: 1, Description: strings.Repeat("ñ", 50) + "...", Label: "arrufo", Confidence: "93.45%", Actor: "zoe", Date: "2025-03-14", Time: "09:32:00"},
		{N: 2, Description: "corto", Label: "puntual", Confidence: "90.00%", Actor: "ana", Date: "2025-03-14", Time: "09:33:00"},
	}
	if diff := cmp.Diff(wantRecent, doc.Recent); diff != "" {
		t.Errorf("recent mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateReportRecentLimit(t *testing.T) {
	var events []auditlog.Event
	for i := range 15 {
		events = append(events, classified("a", string(rune('a'+i)), "arrufo", "95.00%", i))
	}

	doc := dashboard.GenerateReport(dashboard.Aggregate(events), events, base, defaultOptions())

	if len(doc.Recent) != 10 {
		t.Fatalf("got %d recent rows, want 10", len(doc.Recent))
	}
	if doc.Recent[0].Description != "f" || doc.Recent[9].Description != "o" {
		t.Errorf("recent rows span %q..%q, want f..o", doc.Recent[0].Description, doc.Recent[9].Description)
	}
}

func sampleDocument() dashboard.Document {
	events := []auditlog.Event{
		granted("ana", 0),
		denied("bob", 1),
		classified("ana", "hilo suelto en la costura", "arrufo", "95.12%", 2),
	}
	return dashboard.GenerateReport(dashboard.Aggregate(events), dashboard.RecentClassifications(events, 10), base, defaultOptions())
}

func TestRenderDeterministic(t *testing.T) {
	doc := sampleDocument()

	for _, f := range dashboard.Formats {
		t.Run(string(f), func(t *testing.T) {
			first, err := dashboard.Render(doc, f)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			second, err := dashboard.Render(sampleDocument(), f)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if !bytes.Equal(first, second) {
				t.Errorf("renders differ:\n%s\n---\n%s", first, second)
			}
		})
	}
}

func TestRenderText(t *testing.T) {
	out, err := dashboard.Render(sampleDocument(), dashboard.FormatText)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	s := string(out)

	sections := []string{"== Generated ==", "== Activity ==", "== Users ==", "== Label distribution ==", "== Recent classifications =="}
	last := -1
	for _, sec := range sections {
		i := strings.Index(s, sec)
		if i < 0 {
			t.Fatalf("missing section %q in:\n%s", sec, s)
		}
		if i < last {
			t.Errorf("section %q out of order", sec)
		}
		last = i
	}

	for _, want := range []string{"2025-03-14T09:30:00Z", "100.0%", "0.0%", "95.12%", "hilo suelto en la costura"} {
		if !strings.Contains(s, want) {
			t.Errorf("text render missing %q", want)
		}
	}
}

func TestRenderMarkdownEmptyTables(t *testing.T) {
	doc := dashboard.GenerateReport(dashboard.Aggregate(nil), nil, base, defaultOptions())

	out, err := dashboard.Render(doc, dashboard.FormatMarkdown)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	s := string(out)

	if !strings.HasPrefix(s, "# Fissure activity report") {
		t.Errorf("markdown missing title:\n%s", s)
	}
	if got := strings.Count(s, "(none)"); got != 2 {
		t.Errorf("got %d empty-table markers, want 2 (users, recent)", got)
	}
	found := false
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "|") && strings.Contains(line, "arrufo") {
			found = true
		}
	}
	if !found {
		t.Errorf("markdown missing label row:\n%s", s)
	}
}

func TestRenderStructured(t *testing.T) {
	doc := sampleDocument()

	t.Run("json", func(t *testing.T) {
		out, err := dashboard.Render(doc, dashboard.FormatJSON)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		var got dashboard.Document
		if err := json.Unmarshal(out, &got); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if diff := cmp.Diff(doc, got); diff != "" {
			t.Errorf("document mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := dashboard.Render(doc, dashboard.FormatYAML)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		var got map[string]any
		if err := yaml.Unmarshal(out, &got); err != nil {
			t.Fatalf("invalid yaml: %v", err)
		}
		for _, key := range []string{"generated_at", "counters", "users", "labels", "recent"} {
			if _, ok := got[key]; !ok {
				t.Errorf("yaml missing key %q", key)
			}
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    dashboard.Format
		wantErr bool
	}{
		{"text", dashboard.FormatText, false},
		{"Markdown", dashboard.FormatMarkdown, false},
		{"md", dashboard.FormatMarkdown, false},
		{" json ", dashboard.FormatJSON, false},
		{"yml", dashboard.FormatYAML, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := dashboard.ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, dashboard.ErrUnknownFormat) {
					t.Errorf("err = %v, want ErrUnknownFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := dashboard.Render(sampleDocument(), "pdf"); !errors.Is(err, dashboard.ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}
