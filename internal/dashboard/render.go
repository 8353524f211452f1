package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/fissure/pkg/tables"
)

// Format is a report export format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatMarkdown, FormatJSON, FormatYAML}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatText, FormatMarkdown, FormatJSON, FormatYAML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	case "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension used when archiving the format.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatText:
		return "txt"
	}
	return string(f)
}

// ContentType returns the HTTP content type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Render encodes the document in the given format.
func Render(doc Document, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		return renderTables(doc, tables.ASCII, "== %s ==\n"), nil
	case FormatMarkdown:
		return renderTables(doc, tables.Markdown, "## %s\n"), nil
	case FormatJSON:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("render json: %w", err)
		}
		return append(b, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("render yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("render yaml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func renderTables(doc Document, mode tables.Mode, heading string) []byte {
	var buf bytes.Buffer

	section := func(title string, body string) {
		fmt.Fprintf(&buf, heading, title)
		buf.WriteString(body)
		buf.WriteString("\n\n")
	}

	if mode == tables.Markdown {
		buf.WriteString("# Fissure activity report\n\n")
	}
	section("Generated", doc.GeneratedAt.Format(time.RFC3339))

	counters := tables.New(mode)
	counters.Header("Metric", "Value")
	counters.Columns(tables.Column{Number: 2, Align: tables.AlignRight})
	counters.Row("Accesses", doc.Counters.Accesses)
	counters.Row("Denied accesses", doc.Counters.DeniedAccesses)
	counters.Row("Classifications", doc.Counters.Classifications)
	counters.Row("Distinct users", doc.Counters.DistinctUsers)
	section("Activity", counters.String())

	users := tables.New(mode)
	users.Header("User", "Accesses", "Denied", "Classifications")
	users.Columns(
		tables.Column{Number: 2, Align: tables.AlignRight},
		tables.Column{Number: 3, Align: tables.AlignRight},
		tables.Column{Number: 4, Align: tables.AlignRight},
	)
	for _, u := range doc.Users {
		users.Row(u.User, u.Accesses, u.Denied, u.Classifications)
	}
	section("Users", orNone(users))

	labels := tables.New(mode)
	labels.Header("Label", "Count", "Percent")
	labels.Columns(
		tables.Column{Number: 2, Align: tables.AlignRight},
		tables.Column{Number: 3, Align: tables.AlignRight},
	)
	for _, l := range doc.Labels {
		labels.Row(l.Label, l.Count, fmt.Sprintf("%.1f%%", l.Percent))
	}
	section("Label distribution", orNone(labels))

	recent := tables.New(mode)
	recent.Header("#", "Description", "Label", "Confidence", "Actor", "Date", "Time")
	recent.Columns(
		tables.Column{Number: 1, Align: tables.AlignRight},
		tables.Column{Number: 4, Align: tables.AlignRight},
	)
	for _, r := range doc.Recent {
		recent.Row(r.N, r.Description, r.Label, r.Confidence, r.Actor, r.Date, r.Time)
	}
	section("Recent classifications", orNone(recent))

	return bytes.TrimRight(buf.Bytes(), "\n")
}

func orNone(b tables.Builder) string {
	if b.Len() == 0 {
		return "(none)"
	}
	return b.String()
}
