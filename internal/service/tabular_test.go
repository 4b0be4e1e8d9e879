package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/scoretrack/scoretrack-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestDecodeScoreSheetXLSX(t *testing.T) {
	buf := buildXLSX(t, [][]interface{}{
		{"Student Email", "Score"},
		{"a@x.com", 85},
		{"b@x.com", "not-a-number"},
		{"", ""}, // fully empty rows are dropped, not counted as skips
		{"c@x.com", 92},
	})

	rows, err := DecodeScoreSheet(buf, "scores.xlsx")
	if err != nil {
		t.Fatalf("DecodeScoreSheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][model.ColumnStudentEmail] != "a@x.com" || rows[0][model.ColumnScore] != "85" {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[2][model.ColumnScore] != "92" {
		t.Errorf("row 2 = %v", rows[2])
	}
}

func TestDecodeScoreSheetCSV(t *testing.T) {
	csvData := "Student Email,Score\na@x.com,85\nb@x.com,92\n"

	rows, err := DecodeScoreSheet(strings.NewReader(csvData), "scores.csv")
	if err != nil {
		t.Fatalf("DecodeScoreSheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1][model.ColumnStudentEmail] != "b@x.com" {
		t.Errorf("row 1 email = %q", rows[1][model.ColumnStudentEmail])
	}
}

func TestDecodeScoreSheetErrors(t *testing.T) {
	missingScore := buildXLSX(t, [][]interface{}{
		{"Student Email", "Grade"},
		{"a@x.com", 85},
	})

	tests := []struct {
		name     string
		data     *bytes.Buffer
		filename string
		wantErr  error
	}{
		{name: "missing score column", data: missingScore, filename: "scores.xlsx", wantErr: ErrDecode},
		{name: "not a workbook", data: bytes.NewBufferString("hello"), filename: "scores.xlsx", wantErr: ErrDecode},
		{name: "empty csv", data: bytes.NewBufferString(""), filename: "scores.csv", wantErr: ErrDecode},
		{name: "unsupported extension", data: bytes.NewBufferString("x"), filename: "scores.pdf", wantErr: ErrUnsupportedUpload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeScoreSheet(tt.data, tt.filename)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildScoreTemplateXLSX(t *testing.T) {
	data, err := BuildScoreTemplateXLSX()
	if err != nil {
		t.Fatalf("BuildScoreTemplateXLSX: %v", err)
	}

	// The template must round-trip through the decoder: it is the
	// authoritative shape uploads are validated against.
	rows, err := DecodeScoreSheet(bytes.NewReader(data), "score_template.xlsx")
	if err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d example rows, want 3", len(rows))
	}
	for _, row := range rows {
		if !model.ValidateRow(row).Valid() {
			t.Errorf("example row %v is not valid", row)
		}
	}
}

func TestBuildScoreTemplateCSV(t *testing.T) {
	data, err := BuildScoreTemplateCSV()
	if err != nil {
		t.Fatalf("BuildScoreTemplateCSV: %v", err)
	}
	rows, err := DecodeScoreSheet(bytes.NewReader(data), "score_template.csv")
	if err != nil {
		t.Fatalf("template csv does not decode: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d example rows, want 3", len(rows))
	}
}
