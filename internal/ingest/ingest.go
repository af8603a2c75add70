// Package ingest adapts scraper export files into named raw tables, the
// operational stand-in for the external export producer during backfills.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/brightpath/assessflow/internal/contracts"
)

// LoadFile reads an export file into a table, dispatching on extension.
// Supported: .xlsx, .csv.
func LoadFile(path, tableName string) (*contracts.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadWorkbook(path, tableName)
	case ".csv":
		return LoadCSV(path, tableName)
	default:
		return nil, fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

// LoadWorkbook reads the first sheet of an exported workbook. The first row
// is the header; short rows are padded so every row matches the header
// width.
func LoadWorkbook(path, tableName string) (*contracts.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %q has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	return tableFromRows(tableName, rows), nil
}

// LoadCSV reads a comma-separated export. The first record is the header.
func LoadCSV(path, tableName string) (*contracts.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // exports are occasionally ragged
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv %q is empty", path)
	}

	return tableFromRows(tableName, records), nil
}

func tableFromRows(tableName string, rows [][]string) *contracts.Table {
	t := &contracts.Table{
		Name:    tableName,
		Columns: rows[0],
		Rows:    make([][]string, 0, len(rows)-1),
	}
	width := len(t.Columns)
	for _, row := range rows[1:] {
		padded := make([]string, width)
		copy(padded, row)
		t.Rows = append(t.Rows, padded)
	}
	return t
}
