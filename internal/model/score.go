package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet column labels. These are a fixed external contract shared with
// the downloadable template; uploads missing either column are rejected whole.
const (
	ColumnStudentEmail = "Student Email"
	ColumnScore        = "Score"
)

// ScoreRecord is one published score. StudentEmail is the join key: StudentID
// is resolved best-effort at ingestion time and left empty when no account
// with that email exists yet, so teachers can publish ahead of signup.
// Records are immutable once written.
type ScoreRecord struct {
	ID           string    `json:"id"`
	BatchID      string    `json:"batch_id"`
	TeacherID    string    `json:"teacher_id"`
	StudentID    string    `json:"student_id,omitempty"`
	StudentEmail string    `json:"student_email"`
	Value        float64   `json:"value"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// ScoreBatch groups the records of one upload session.
type ScoreBatch struct {
	ID            string    `json:"id"`
	TeacherID     string    `json:"teacher_id"`
	AcceptedCount int       `json:"accepted_count"`
	SkippedCount  int       `json:"skipped_count"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// RawRow is one decoded spreadsheet row: an unordered mapping of column label
// to cell value, before any validation.
type RawRow map[string]string

// ValidScoreRow is a row that passed validation: a normalized email plus a
// finite numeric score.
type ValidScoreRow struct {
	Email string
	Value float64
}

// RowValidation is the outcome of validating a single RawRow: either a
// ValidScoreRow or a skip reason. Exactly one of the two is set.
type RowValidation struct {
	Row    *ValidScoreRow
	Reason string
}

// Valid reports whether the row passed validation.
func (v RowValidation) Valid() bool { return v.Row != nil }

// ValidateRow normalizes and validates one raw row. The email is trimmed and
// lowercased; the score must parse to a finite number. Invalid rows are
// skipped by the ingestion pipeline, never fatal.
func ValidateRow(row RawRow) RowValidation {
	email := strings.ToLower(strings.TrimSpace(row[ColumnStudentEmail]))
	if email == "" {
		return RowValidation{Reason: "missing student email"}
	}

	raw := strings.TrimSpace(row[ColumnScore])
	if raw == "" {
		return RowValidation{Reason: "missing score"}
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return RowValidation{Reason: "score is not a number"}
	}

	return RowValidation{Row: &ValidScoreRow{Email: email, Value: value}}
}

// IngestReport summarizes one upload session. AcceptedCount of zero is a
// legitimate outcome, not an error.
type IngestReport struct {
	BatchID       string `json:"batch_id"`
	TeacherID     string `json:"teacher_id"`
	AcceptedCount int    `json:"accepted_count"`
	SkippedCount  int    `json:"skipped_count"`
}

// ScorePoint is one (value, time) entry of a series.
type ScorePoint struct {
	ID         string    `json:"id"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ConnectionSeries is the per-teacher, time-ordered score view for one of a
// student's connections. Scores are ordered by recording time ascending;
// a connection with no scores yet has an empty slice, never a missing entry.
type ConnectionSeries struct {
	ConnectionID string       `json:"connection_id"`
	TeacherID    string       `json:"teacher_id"`
	TeacherName  string       `json:"teacher_name"`
	Subject      string       `json:"subject"`
	TeacherCode  string       `json:"teacher_code"`
	Scores       []ScorePoint `json:"scores"`
	Latest       *float64     `json:"latest,omitempty"`
	LatestBand   Band         `json:"latest_band,omitempty"`
}

// Band is the severity band of a score, derived from its value. It is
// recomputed on every read and never stored.
type Band string

const (
	BandExcellent Band = "excellent" // >= 90
	BandGood      Band = "good"      // >= 80
	BandFair      Band = "fair"      // >= 70
	BandPoor      Band = "poor"
)

// BandFor returns the severity band for a score value.
func BandFor(value float64) Band {
	switch {
	case value >= 90:
		return BandExcellent
	case value >= 80:
		return BandGood
	case value >= 70:
		return BandFair
	default:
		return BandPoor
	}
}
