package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// NewTable returns a table writer rendering to w. Plain tables have no
// borders or colours and suit piping into grep or awk.
func NewTable(w io.Writer, plain bool, headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	row := make(table.Row, len(headers))
	for i, h := range headers {
		if plain {
			row[i] = h
		} else {
			row[i] = text.FgHiCyan.Sprint(h)
		}
	}
	t.AppendHeader(row)

	if plain {
		style := table.StyleDefault
		style.Options = table.OptionsNoBordersAndSeparators
		style.Box.PaddingLeft = ""
		style.Box.PaddingRight = "   "
		style.Format.Header = text.FormatUpper
		t.SetStyle(style)
	} else {
		t.SetStyle(table.StyleRounded)
	}
	return t
}

// Dash returns s, or "-" for an empty cell.
func Dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
