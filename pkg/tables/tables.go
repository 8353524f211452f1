// Package tables renders tabular report sections as terminal or Markdown tables.
package tables

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode selects the rendering dialect.
type Mode int

const (
	ASCII    Mode = iota // box-drawing terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// Align is the horizontal alignment of a column.
type Align int

const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Column configures a single 1-based column.
type Column struct {
	Number   int
	Align    Align
	MaxWidth int // 0 = unlimited
}

// Builder accumulates a header, rows and an optional footer and renders
// them in the Mode chosen at construction.
type Builder interface {
	Header(cols ...string)
	Row(vals ...any)
	Footer(vals ...any)
	Columns(cols ...Column)
	Len() int
	String() string
}

// New returns a Builder for the given Mode.
func New(m Mode) Builder {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	// headers and footers render as written in both modes
	w.Style().Format.Header = text.FormatDefault
	w.Style().Format.Footer = text.FormatDefault
	return &builder{writer: w, mode: m}
}

type builder struct {
	writer table.Writer
	mode   Mode
	rows   int
}

func (b *builder) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	b.writer.AppendHeader(row)
}

func (b *builder) Row(vals ...any) {
	b.writer.AppendRow(table.Row(vals))
	b.rows++
}

func (b *builder) Footer(vals ...any) {
	b.writer.AppendFooter(table.Row(vals))
}

func (b *builder) Columns(cols ...Column) {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{
			Number:   c.Number,
			Align:    toTextAlign(c.Align),
			WidthMax: c.MaxWidth,
		}
	}
	b.writer.SetColumnConfigs(cfgs)
}

func (b *builder) Len() int {
	return b.rows
}

func (b *builder) String() string {
	if b.mode == Markdown {
		return b.writer.RenderMarkdown()
	}
	return b.writer.Render()
}

func toTextAlign(a Align) text.Align {
	switch a {
	case AlignLeft:
		return text.AlignLeft
	case AlignRight:
		return text.AlignRight
	case AlignCenter:
		return text.AlignCenter
	default:
		return text.AlignDefault
	}
}
