// Package table prints aligned text tables, used by the features and scan
// commands.
package table

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
)

// Table collects rows to be printed aligned in columns.
type Table struct {
	columns   []string
	templates []*template.Template
	rows      []interface{}
	footer    []string

	CellSeparator string
}

// New initializes an empty Table.
func New() *Table {
	return &Table{CellSeparator: "  "}
}

// AddColumn adds a column with the given header. The format is a
// text/template string applied to each row value. AddColumn panics when the
// format does not compile.
func (t *Table) AddColumn(header, format string) {
	tmpl, err := template.New("column " + header).Parse(format)
	if err != nil {
		panic(err)
	}

	t.columns = append(t.columns, header)
	t.templates = append(t.templates, tmpl)
}

// AddRow adds a row, the column templates are applied to data.
func (t *Table) AddRow(data interface{}) {
	t.rows = append(t.rows, data)
}

// AddFooter adds a line printed below the table.
func (t *Table) AddFooter(line string) {
	t.footer = append(t.footer, line)
}

func (t *Table) printRow(w io.Writer, cells []string, widths []int) error {
	var sb strings.Builder
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString(t.CellSeparator)
		}
		sb.WriteString(cell)
		if pad := widths[i] - len(cell); pad > 0 && i < len(cells)-1 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
	}

	_, err := fmt.Fprintln(w, sb.String())
	return err
}

// Write renders the table to w.
func (t *Table) Write(w io.Writer) error {
	if len(t.templates) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(t.rows))
	buf := bytes.NewBuffer(nil)
	for _, data := range t.rows {
		row := make([]string, 0, len(t.templates))
		for _, tmpl := range t.templates {
			if err := tmpl.Execute(buf, data); err != nil {
				return err
			}
			row = append(row, buf.String())
			buf.Reset()
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(t.columns))
	for i, header := range t.columns {
		widths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if widths[i] < len(cell) {
				widths[i] = len(cell)
			}
		}
	}

	totalWidth := (len(t.columns) - 1) * len(t.CellSeparator)
	for _, width := range widths {
		totalWidth += width
	}

	if err := t.printRow(w, t.columns, widths); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", totalWidth)); err != nil {
		return err
	}

	for _, row := range rows {
		if err := t.printRow(w, row, widths); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, strings.Repeat("-", totalWidth)); err != nil {
		return err
	}

	for _, line := range t.footer {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
