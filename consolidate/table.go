// Package consolidate joins a lead manifest ("MIS") against a
// call-detail-record log ("CDR") on a normalized phone key and produces a
// one-row-per-lead consolidated report with summary metrics.
package consolidate

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a fully-buffered tabular input: header row plus data rows, with
// a header index for column lookups.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	idx map[string]int
}

// NewTable builds a table and its header index. Header cells are trimmed;
// on duplicate names the first occurrence wins.
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{
		Name:   name,
		Header: make([]string, len(header)),
		Rows:   rows,
		idx:    make(map[string]int, len(header)),
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		t.Header[i] = h
		if _, ok := t.idx[h]; !ok {
			t.idx[h] = i
		}
	}
	return t
}

// Col returns the index of a named column, -1 when absent.
func (t *Table) Col(name string) int {
	if i, ok := t.idx[name]; ok {
		return i
	}
	return -1
}

// Value reads a named column from a row, "" when the column is absent or
// the row is short.
func (t *Table) Value(row []string, name string) string {
	i := t.Col(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadTable buffers a whole CSV or Excel input. The format follows the
// uploaded filename's extension; Excel files are read from their first
// sheet.
func ReadTable(name, filename string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readExcel(name, r)
	default:
		return readCSV(name, r)
	}
}

func readCSV(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read header: %w", name, err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(rec) == 0 {
			continue
		}
		rows = append(rows, rec)
	}
	return NewTable(name, header, rows), nil
}

func readExcel(name string, r io.Reader) (*Table, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to open workbook: %w", name, err)
	}
	defer book.Close()

	sheet := book.GetSheetName(0)
	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read sheet %q: %w", name, sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: sheet %q is empty", name, sheet)
	}
	return NewTable(name, rows[0], rows[1:]), nil
}
