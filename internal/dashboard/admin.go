package dashboard

import (
	"github.com/JaimeStill/fissure/pkg/auditlog"
	"github.com/JaimeStill/fissure/pkg/formatting"
)

// AccessRow is one line of the recent access listing.
type AccessRow struct {
	Actor   string `json:"actor"`
	Granted bool   `json:"granted"`
	Role    string `json:"role,omitempty"`
	Details string `json:"details,omitempty"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// ClassificationRow is one line of the recent classification listing.
type ClassificationRow struct {
	Actor       string `json:"actor"`
	Description string `json:"description"`
	Label       string `json:"label"`
	Confidence  string `json:"confidence"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// DefaultListLimit bounds the admin listings when no limit is given.
const DefaultListLimit = 50

// RecentAccesses lists access events newest first. A non-positive limit
// means DefaultListLimit.
func RecentAccesses(events []auditlog.Event, limit int) []AccessRow {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows := []AccessRow{}
	for i := len(events) - 1; i >= 0 && len(rows) < limit; i-- {
		e := events[i]
		p, ok := e.Access()
		if !ok {
			continue
		}
		rows = append(rows, AccessRow{
			Actor:   e.Actor,
			Granted: e.Kind == auditlog.KindAccessGranted,
			Role:    p.Role,
			Details: p.Details,
			Date:    e.Date(),
			Time:    e.Time(),
		})
	}
	return rows
}

// RecentClassificationRows lists classification events newest first with
// descriptions truncated to truncateAt runes.
func RecentClassificationRows(events []auditlog.Event, limit, truncateAt int) []ClassificationRow {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows := []ClassificationRow{}
	for i := len(events) - 1; i >= 0 && len(rows) < limit; i-- {
		e := events[i]
		p, ok := e.Classification()
		if !ok {
			continue
		}
		rows = append(rows, ClassificationRow{
			Actor:       e.Actor,
			Description: formatting.Truncate(p.Description, truncateAt),
			Label:       p.ResultLabel,
			Confidence:  p.Confidence,
			Date:        e.Date(),
			Time:        e.Time(),
		})
	}
	return rows
}
