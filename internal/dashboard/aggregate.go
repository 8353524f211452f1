// Package dashboard derives activity statistics from the audit log and
// renders them as a fixed five-section report.
package dashboard

import (
	"slices"

	"github.com/JaimeStill/fissure/pkg/auditlog"
)

// UserActivity counts one actor's events. Accesses includes denied attempts.
type UserActivity struct {
	Accesses        int `json:"accesses" yaml:"accesses"`
	Denied          int `json:"denied" yaml:"denied"`
	Classifications int `json:"classifications" yaml:"classifications"`
}

// Snapshot is a point-in-time aggregate of the audit log. It is derived on
// demand and never persisted.
type Snapshot struct {
	TotalAccesses        int                     `json:"total_accesses" yaml:"total_accesses"`
	DeniedAccesses       int                     `json:"denied_accesses" yaml:"denied_accesses"`
	TotalClassifications int                     `json:"total_classifications" yaml:"total_classifications"`
	ActiveUsers          []string                `json:"active_users" yaml:"active_users"`
	PerUser              map[string]UserActivity `json:"per_user" yaml:"per_user"`
	LabelDistribution    map[string]int          `json:"label_distribution" yaml:"label_distribution"`
	UnknownEvents        int                     `json:"unknown_events" yaml:"unknown_events"`
}

// Aggregate computes a Snapshot in a single pass. Denied accesses count
// toward access totals but never make an actor active. Events of unknown
// kind are only counted.
func Aggregate(events []auditlog.Event) Snapshot {
	snap := Snapshot{
		ActiveUsers:       []string{},
		PerUser:           make(map[string]UserActivity),
		LabelDistribution: make(map[string]int),
	}
	active := make(map[string]struct{})

	for _, e := range events {
		switch e.Kind {
		case auditlog.KindAccessGranted:
			snap.TotalAccesses++
			u := snap.PerUser[e.Actor]
			u.Accesses++
			snap.PerUser[e.Actor] = u
			active[e.Actor] = struct{}{}
		case auditlog.KindAccessDenied:
			snap.TotalAccesses++
			snap.DeniedAccesses++
			u := snap.PerUser[e.Actor]
			u.Accesses++
			u.Denied++
			snap.PerUser[e.Actor] = u
		case auditlog.KindClassificationPerformed:
			p, _ := e.Classification()
			snap.TotalClassifications++
			snap.LabelDistribution[p.ResultLabel]++
			u := snap.PerUser[e.Actor]
			u.Classifications++
			snap.PerUser[e.Actor] = u
		default:
			snap.UnknownEvents++
		}
	}

	for user := range active {
		snap.ActiveUsers = append(snap.ActiveUsers, user)
	}
	slices.Sort(snap.ActiveUsers)

	return snap
}

// RecentClassifications returns the last n classification events in log order.
func RecentClassifications(events []auditlog.Event, n int) []auditlog.Event {
	if n <= 0 {
		return []auditlog.Event{}
	}

	var out []auditlog.Event
	for i := len(events) - 1; i >= 0 && len(out) < n; i-- {
		if events[i].Kind == auditlog.KindClassificationPerformed {
			out = append(out, events[i])
		}
	}
	slices.Reverse(out)

	if out == nil {
		out = []auditlog.Event{}
	}
	return out
}
