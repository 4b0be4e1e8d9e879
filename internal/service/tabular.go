package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/scoretrack/scoretrack-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// Tabular decode errors. ErrDecode covers files that cannot be read as the
// expected two-column shape at all; it fails the whole upload before any row
// is inspected.
var (
	ErrDecode            = errors.New("file is not a valid score sheet")
	ErrUnsupportedUpload = errors.New("unsupported upload format")
)

// templateSheet is the worksheet name of the downloadable template.
const templateSheet = "Scores"

// templateRows are the header plus example rows of the authoritative template.
var templateRows = [][]string{
	{model.ColumnStudentEmail, model.ColumnScore},
	{"student1@email.com", "85"},
	{"student2@email.com", "92"},
	{"student3@email.com", "78"},
}

// DecodeScoreSheet decodes an uploaded file into raw rows keyed by column
// label. The format is picked by file extension: .xlsx or .csv. The header
// must contain both template columns; anything else is ErrDecode.
func DecodeScoreSheet(r io.Reader, filename string) ([]model.RawRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return decodeXLSX(r)
	case ".csv":
		return decodeCSV(r)
	default:
		return nil, ErrUnsupportedUpload
	}
}

func decodeXLSX(r io.Reader) ([]model.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrDecode)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return mapRows(rows)
}

func decodeCSV(r io.Reader) ([]model.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows; validation skips bad ones

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return mapRows(records)
}

// mapRows turns a header row plus data rows into RawRow maps. The header must
// contain both required columns; rows where every cell is blank are dropped,
// matching how spreadsheet readers treat trailing empty rows.
func mapRows(rows [][]string) ([]model.RawRow, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrDecode)
	}

	header := make([]string, len(rows[0]))
	seen := map[string]bool{}
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		seen[header[i]] = true
	}
	if !seen[model.ColumnStudentEmail] || !seen[model.ColumnScore] {
		return nil, fmt.Errorf("%w: header must contain %q and %q columns",
			ErrDecode, model.ColumnStudentEmail, model.ColumnScore)
	}

	out := make([]model.RawRow, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := model.RawRow{}
		empty := true
		for i, cell := range cells {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = cell
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out, nil
}

// BuildScoreTemplateXLSX produces the downloadable xlsx template: the header
// row plus example rows, in the exact shape the ingestion pipeline accepts.
func BuildScoreTemplateXLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(templateSheet)
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	for i, cells := range templateRows {
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(templateSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("set row: %w", err)
		}
	}

	_ = f.SetColWidth(templateSheet, "A", "A", 25)
	_ = f.SetColWidth(templateSheet, "B", "B", 10)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildScoreTemplateCSV produces the csv variant of the template.
func BuildScoreTemplateCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(templateRows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
