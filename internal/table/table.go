// Package table isolates the pipe-delimited table in a markdown document and
// splits it into trimmed cells.
package table

import (
	"strings"
	"unicode/utf8"
)

const delimiter = "|"

// Extract returns the inclusive substring between the first and the last
// delimiter in doc. A document without a delimiter yields "".
//
// Only a single contiguous table is supported; text outside the table that
// contains a delimiter ends up inside the returned region.
func Extract(doc string) string {
	first := strings.Index(doc, delimiter)
	if first < 0 {
		return ""
	}
	last := strings.LastIndex(doc, delimiter)
	return doc[first : last+len(delimiter)]
}

// Rows splits an extracted table region into rows of trimmed cells. The
// leading and trailing delimiter of every line is dropped. Separator and
// header rows are returned as-is; callers decide which rows carry data.
func Rows(region string) []Row {
	if region == "" {
		return nil
	}
	lines := strings.Split(region, "\n")
	rows := make([]Row, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, splitLine(line))
	}
	return rows
}

func splitLine(line string) Row {
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) < 2 {
		return Row{""}
	}
	_, head := utf8.DecodeRuneInString(line)
	_, tail := utf8.DecodeLastRuneInString(line)
	inner := line[head : len(line)-tail]
	cells := strings.Split(inner, delimiter)
	for i, cell := range cells {
		cells[i] = strings.TrimSpace(cell)
	}
	return Row(cells)
}

// Row is one table line. The expected column order is date, name and link,
// price, topic.
type Row []string

func (r Row) cell(i int) string {
	if i < len(r) {
		return r[i]
	}
	return ""
}

// Date returns the date or day-range cell.
func (r Row) Date() string { return r.cell(0) }

// NameAndURL returns the markdown link cell.
func (r Row) NameAndURL() string { return r.cell(1) }

// Price returns the raw, possibly escaped, price cell.
func (r Row) Price() string { return r.cell(2) }

// Topic returns the raw topic cell.
func (r Row) Topic() string { return r.cell(3) }
