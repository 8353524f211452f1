package dashboard

import (
	"maps"
	"slices"
	"time"

	"github.com/JaimeStill/fissure/pkg/auditlog"
	"github.com/JaimeStill/fissure/pkg/formatting"
)

// Options controls report content.
type Options struct {
	// Labels is the declared label order; these rows always appear first.
	Labels []string
	// RecentLimit is the number of recent classifications listed.
	RecentLimit int
	// TruncateAt is the display length, in runes, of recent descriptions.
	TruncateAt int
}

// Counters is the overall activity section.
type Counters struct {
	Accesses        int `json:"accesses" yaml:"accesses"`
	DeniedAccesses  int `json:"denied_accesses" yaml:"denied_accesses"`
	Classifications int `json:"classifications" yaml:"classifications"`
	DistinctUsers   int `json:"distinct_users" yaml:"distinct_users"`
}

// UserRow is one row of the per-user activity section.
type UserRow struct {
	User            string `json:"user" yaml:"user"`
	Accesses        int    `json:"accesses" yaml:"accesses"`
	Denied          int    `json:"denied" yaml:"denied"`
	Classifications int    `json:"classifications" yaml:"classifications"`
}

// LabelRow is one row of the label distribution section. Percent is
// rounded to one decimal.
type LabelRow struct {
	Label   string  `json:"label" yaml:"label"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// RecentRow is one row of the recent classifications section.
type RecentRow struct {
	N           int    `json:"n" yaml:"n"`
	Description string `json:"description" yaml:"description"`
	Label       string `json:"label" yaml:"label"`
	Confidence  string `json:"confidence" yaml:"confidence"`
	Actor       string `json:"actor" yaml:"actor"`
	Date        string `json:"date" yaml:"date"`
	Time        string `json:"time" yaml:"time"`
}

// Document is the report content, sections in their fixed order.
type Document struct {
	GeneratedAt time.Time   `json:"generated_at" yaml:"generated_at"`
	Counters    Counters    `json:"counters" yaml:"counters"`
	Users       []UserRow   `json:"users" yaml:"users"`
	Labels      []LabelRow  `json:"labels" yaml:"labels"`
	Recent      []RecentRow `json:"recent" yaml:"recent"`
}

// GenerateReport builds the report document. It is pure: the same inputs
// always yield the same document.
func GenerateReport(snap Snapshot, recent []auditlog.Event, generatedAt time.Time, opts Options) Document {
	doc := Document{
		GeneratedAt: generatedAt.UTC(),
		Counters: Counters{
			Accesses:        snap.TotalAccesses,
			DeniedAccesses:  snap.DeniedAccesses,
			Classifications: snap.TotalClassifications,
			DistinctUsers:   len(snap.ActiveUsers),
		},
		Users:  []UserRow{},
		Labels: []LabelRow{},
		Recent: []RecentRow{},
	}

	for _, user := range slices.Sorted(maps.Keys(snap.PerUser)) {
		a := snap.PerUser[user]
		doc.Users = append(doc.Users, UserRow{
			User:            user,
			Accesses:        a.Accesses,
			Denied:          a.Denied,
			Classifications: a.Classifications,
		})
	}

	for _, label := range labelOrder(opts.Labels, snap.LabelDistribution) {
		count := snap.LabelDistribution[label]
		doc.Labels = append(doc.Labels, LabelRow{
			Label:   label,
			Count:   count,
			Percent: formatting.Share(count, snap.TotalClassifications),
		})
	}

	if opts.RecentLimit > 0 && len(recent) > opts.RecentLimit {
		recent = recent[len(recent)-opts.RecentLimit:]
	}
	for i, e := range recent {
		p, _ := e.Classification()
		doc.Recent = append(doc.Recent, RecentRow{
			N:           i + 1,
			Description: formatting.Truncate(p.Description, opts.TruncateAt),
			Label:       p.ResultLabel,
			Confidence:  p.Confidence,
			Actor:       e.Actor,
			Date:        e.Date(),
			Time:        e.Time(),
		})
	}

	return doc
}

// labelOrder lists declared labels in order, then any other logged labels sorted.
func labelOrder(declared []string, dist map[string]int) []string {
	out := slices.Clone(declared)
	seen := make(map[string]struct{}, len(declared))
	for _, l := range declared {
		seen[l] = struct{}{}
	}

	var extra []string
	for l := range dist {
		if _, ok := seen[l]; !ok {
			extra = append(extra, l)
		}
	}
	slices.Sort(extra)

	return append(out, extra...)
}
