package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/scoretrack/scoretrack-backend/internal/model"
)

type scoreFixture struct {
	svc     *ScoreService
	users   *fakeUserStore
	conns   *fakeConnStore
	scores  *fakeScoreStore
	teacher *model.User
	student *model.User
}

func newScoreFixture() *scoreFixture {
	users := newFakeUserStore()
	teacher := users.add(model.User{
		FullName:    "John Smith",
		Email:       "john.smith@school.edu",
		Role:        model.RoleTeacher,
		Subject:     "Mathematics",
		TeacherCode: "MATH-4821",
	})
	student := users.add(model.User{
		FullName: "Jane Doe",
		Email:    "a@x.com",
		Role:     model.RoleStudent,
	})
	conns := &fakeConnStore{users: users}
	scores := &fakeScoreStore{users: users, conns: conns}
	return &scoreFixture{
		svc:     NewScoreService(scores, conns, users, nil, zerolog.Nop()),
		users:   users,
		conns:   conns,
		scores:  scores,
		teacher: teacher,
		student: student,
	}
}

func (f *scoreFixture) connect(t *testing.T, studentID, teacherID string) {
	t.Helper()
	conn := &model.Connection{StudentID: studentID, TeacherID: teacherID}
	if err := f.conns.Create(context.Background(), conn); err != nil {
		t.Fatalf("connect fixture: %v", err)
	}
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("mixed rows", func(t *testing.T) {
		f := newScoreFixture()
		rows := []model.RawRow{
			{model.ColumnStudentEmail: "a@x.com", model.ColumnScore: "85"},
			{model.ColumnStudentEmail: "", model.ColumnScore: "90"},
			{model.ColumnStudentEmail: "b@x.com", model.ColumnScore: "NaN"},
		}

		report, err := f.svc.Ingest(ctx, f.teacher.ID, rows)
		if err != nil {
			t.Fatalf("Ingest: %v", err)
		}
		if report.AcceptedCount != 1 || report.SkippedCount != 2 {
			t.Errorf("report = %d accepted / %d skipped, want 1/2", report.AcceptedCount, report.SkippedCount)
		}
		if len(f.scores.records) != 1 {
			t.Fatalf("stored %d records, want 1", len(f.scores.records))
		}
		rec := f.scores.records[0]
		if rec.StudentEmail != "a@x.com" || rec.Value != 85 {
			t.Errorf("record = %q/%v, want a@x.com/85", rec.StudentEmail, rec.Value)
		}
		if rec.StudentID != f.student.ID {
			t.Errorf("StudentID = %q, want resolved %q", rec.StudentID, f.student.ID)
		}
	})

	t.Run("unknown email is accepted without an account", func(t *testing.T) {
		f := newScoreFixture()
		rows := []model.RawRow{
			{model.ColumnStudentEmail: "nobody@x.com", model.ColumnScore: "77"},
		}

		report, err := f.svc.Ingest(ctx, f.teacher.ID, rows)
		if err != nil {
			t.Fatalf("Ingest: %v", err)
		}
		if report.AcceptedCount != 1 {
			t.Fatalf("accepted = %d, want 1", report.AcceptedCount)
		}
		if f.scores.records[0].StudentID != "" {
			t.Errorf("StudentID = %q, want unresolved", f.scores.records[0].StudentID)
		}
	})

	t.Run("all rows skipped is reported, not an error", func(t *testing.T) {
		f := newScoreFixture()
		rows := []model.RawRow{
			{model.ColumnStudentEmail: "", model.ColumnScore: "1"},
			{model.ColumnStudentEmail: "x@x.com", model.ColumnScore: "??"},
		}

		report, err := f.svc.Ingest(ctx, f.teacher.ID, rows)
		if err != nil {
			t.Fatalf("Ingest: %v", err)
		}
		if report.AcceptedCount != 0 || report.SkippedCount != 2 {
			t.Errorf("report = %d/%d, want 0/2", report.AcceptedCount, report.SkippedCount)
		}
		// The upload still counts as a session.
		if len(f.scores.batches) != 1 {
			t.Errorf("stored %d batches, want 1", len(f.scores.batches))
		}
	})

	t.Run("re-ingestion duplicates records", func(t *testing.T) {
		f := newScoreFixture()
		rows := []model.RawRow{
			{model.ColumnStudentEmail: "a@x.com", model.ColumnScore: "85"},
		}

		for i := 0; i < 2; i++ {
			if _, err := f.svc.Ingest(ctx, f.teacher.ID, rows); err != nil {
				t.Fatalf("Ingest %d: %v", i, err)
			}
		}
		if len(f.scores.records) != 2 {
			t.Errorf("stored %d records, want 2 (ingestion is not idempotent)", len(f.scores.records))
		}
		if len(f.scores.batches) != 2 {
			t.Errorf("stored %d batches, want 2", len(f.scores.batches))
		}
	})
}

func TestSeriesForStudent(t *testing.T) {
	ctx := context.Background()
	f := newScoreFixture()
	second := f.users.add(model.User{
		FullName:    "Mary Major",
		Email:       "mary@school.edu",
		Role:        model.RoleTeacher,
		Subject:     "Biology",
		TeacherCode: "BIOL-1234",
	})

	f.connect(t, f.student.ID, f.teacher.ID)
	f.connect(t, f.student.ID, second.ID)

	// Two batches for the math teacher, recorded in order; none for biology.
	for _, value := range []string{"70", "85"} {
		rows := []model.RawRow{{model.ColumnStudentEmail: "a@x.com", model.ColumnScore: value}}
		if _, err := f.svc.Ingest(ctx, f.teacher.ID, rows); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}

	series, err := f.svc.SeriesForStudent(ctx, f.student.ID)
	if err != nil {
		t.Fatalf("SeriesForStudent: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("got %d series, want 2 (empty connections must appear)", len(series))
	}

	// Most recent connection first: biology, then math.
	bio, math := series[0], series[1]
	if bio.TeacherID != second.ID || math.TeacherID != f.teacher.ID {
		t.Fatalf("series order = [%q %q]", bio.TeacherID, math.TeacherID)
	}

	if len(bio.Scores) != 0 || bio.Scores == nil {
		t.Errorf("biology scores = %v, want empty non-nil slice", bio.Scores)
	}
	if bio.Latest != nil || bio.LatestBand != "" {
		t.Errorf("biology latest = %v/%q, want unset", bio.Latest, bio.LatestBand)
	}

	if len(math.Scores) != 2 {
		t.Fatalf("math scores = %d, want 2", len(math.Scores))
	}
	// Oldest first.
	if math.Scores[0].Value != 70 || math.Scores[1].Value != 85 {
		t.Errorf("math scores = [%v %v], want [70 85]", math.Scores[0].Value, math.Scores[1].Value)
	}
	if math.Latest == nil || *math.Latest != 85 {
		t.Errorf("latest = %v, want 85", math.Latest)
	}
	if math.LatestBand != model.BandGood {
		t.Errorf("latest band = %q, want %q", math.LatestBand, model.BandGood)
	}
}

func TestSeriesIncludesPreConnectionScores(t *testing.T) {
	ctx := context.Background()
	f := newScoreFixture()

	// Teacher publishes before the student connects.
	rows := []model.RawRow{{model.ColumnStudentEmail: "a@x.com", model.ColumnScore: "91"}}
	if _, err := f.svc.Ingest(ctx, f.teacher.ID, rows); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	f.connect(t, f.student.ID, f.teacher.ID)

	series, err := f.svc.SeriesForStudent(ctx, f.student.ID)
	if err != nil {
		t.Fatalf("SeriesForStudent: %v", err)
	}
	if len(series) != 1 || len(series[0].Scores) != 1 {
		t.Fatalf("series = %+v, want one connection with one score", series)
	}
	if series[0].LatestBand != model.BandExcellent {
		t.Errorf("band = %q, want %q", series[0].LatestBand, model.BandExcellent)
	}
}

func TestStatsForTeacher(t *testing.T) {
	ctx := context.Background()
	f := newScoreFixture()
	f.connect(t, f.student.ID, f.teacher.ID)

	rows := []model.RawRow{
		{model.ColumnStudentEmail: "a@x.com", model.ColumnScore: "85"},
		{model.ColumnStudentEmail: "b@x.com", model.ColumnScore: "90"},
	}
	if _, err := f.svc.Ingest(ctx, f.teacher.ID, rows); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	stats, err := f.svc.StatsForTeacher(ctx, f.teacher.ID)
	if err != nil {
		t.Fatalf("StatsForTeacher: %v", err)
	}
	if stats.ConnectedStudents != 1 || stats.ScoresPublished != 2 || stats.UploadSessions != 1 {
		t.Errorf("stats = %+v, want 1 student / 2 scores / 1 session", stats)
	}
}
