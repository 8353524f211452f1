package dashboard_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/fissure/internal/dashboard"
	"github.com/JaimeStill/fissure/pkg/auditlog"
)

func TestRecentAccesses(t *testing.T) {
	events := []auditlog.Event{
		granted("ana", 0),
		classified("ana", "x", "arrufo", "95.00%", 1),
		denied("bob", 2),
	}

	got := dashboard.RecentAccesses(events, 0)
	want := []dashboard.AccessRow{
		{Actor: "bob", Granted: false, Details: "bad password", Date: "2025-03-14", Time: "09:32:00"},
		{Actor: "ana", Granted: true, Role: "inspector", Date: "2025-03-14", Time: "09:30:00"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRecentListingsLimit(t *testing.T) {
	var events []auditlog.Event
	for i := range 60 {
		events = append(events, granted("ana", i), classified("ana", strings.Repeat("x", 80), "arrufo", "95.00%", i))
	}

	if got := len(dashboard.RecentAccesses(events, 0)); got != dashboard.DefaultListLimit {
		t.Errorf("default access limit = %d, want %d", got, dashboard.DefaultListLimit)
	}
	rows := dashboard.RecentClassificationRows(events, 5, 50)
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(rows))
	}
	if want := strings.Repeat("x", 50) + "..."; rows[0].Description != want {
		t.Errorf("Description = %q, want truncated to 50", rows[0].Description)
	}
	if rows[0].Time != "10:29:00" {
		t.Errorf("newest row time = %q, want 10:29:00", rows[0].Time)
	}
}

func TestRecentListingsEmpty(t *testing.T) {
	if got := dashboard.RecentAccesses(nil, 10); got == nil || len(got) != 0 {
		t.Errorf("RecentAccesses(nil) = %v, want empty non-nil", got)
	}
	if got := dashboard.RecentClassificationRows(nil, 10, 50); got == nil || len(got) != 0 {
		t.Errorf("RecentClassificationRows(nil) = %v, want empty non-nil", got)
	}
}
