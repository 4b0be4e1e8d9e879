package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/scoretrack/scoretrack-backend/internal/model"
	"github.com/scoretrack/scoretrack-backend/internal/repository"
)

// fakeUserStore is an in-memory UserStore and TeacherLookup.
type fakeUserStore struct {
	users      map[string]*model.User
	createErrs []error // popped per Create call before the real insert
	nextID     int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*model.User{}}
}

func (f *fakeUserStore) add(u model.User) *model.User {
	f.nextID++
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", f.nextID)
	}
	u.CreatedAt = time.Now()
	f.users[u.ID] = &u
	return &u
}

func (f *fakeUserStore) Create(ctx context.Context, u *model.User) error {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
		if u.TeacherCode != "" && strings.EqualFold(existing.TeacherCode, u.TeacherCode) {
			return repository.ErrDuplicateTeacherCode
		}
	}
	created := f.add(*u)
	*u = *created
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) GetByTeacherCode(ctx context.Context, code string) (*model.User, error) {
	for _, u := range f.users {
		if u.Role == model.RoleTeacher && strings.EqualFold(u.TeacherCode, strings.TrimSpace(code)) {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// fakeConnStore is an in-memory ConnectionStore backed by the user store for
// the joined profile fields.
type fakeConnStore struct {
	users     *fakeUserStore
	conns     []model.Connection
	nextID    int
	createErr error // forced error on next Create, for the constraint-race test
	hideFrom  bool  // make Exists lie, simulating a concurrent insert
}

func (f *fakeConnStore) Exists(ctx context.Context, studentID, teacherID string) (bool, error) {
	if f.hideFrom {
		return false, nil
	}
	for _, c := range f.conns {
		if c.StudentID == studentID && c.TeacherID == teacherID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConnStore) Create(ctx context.Context, c *model.Connection) error {
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return err
	}
	for _, existing := range f.conns {
		if existing.StudentID == c.StudentID && existing.TeacherID == c.TeacherID {
			return repository.ErrDuplicateConnection
		}
	}
	f.nextID++
	c.ID = fmt.Sprintf("conn-%d", f.nextID)
	c.ConnectedAt = time.Now()
	f.conns = append(f.conns, *c)
	return nil
}

func (f *fakeConnStore) ListForStudent(ctx context.Context, studentID string) ([]model.StudentConnection, error) {
	var out []model.StudentConnection
	// Most recent first.
	for i := len(f.conns) - 1; i >= 0; i-- {
		c := f.conns[i]
		if c.StudentID != studentID {
			continue
		}
		sc := model.StudentConnection{Connection: c}
		if t, ok := f.users.users[c.TeacherID]; ok {
			sc.TeacherName = t.FullName
			sc.Subject = t.Subject
			sc.TeacherCode = t.TeacherCode
		}
		out = append(out, sc)
	}
	return out, nil
}

func (f *fakeConnStore) ListForTeacher(ctx context.Context, teacherID string) ([]model.TeacherConnection, error) {
	var out []model.TeacherConnection
	for i := len(f.conns) - 1; i >= 0; i-- {
		c := f.conns[i]
		if c.TeacherID != teacherID {
			continue
		}
		tc := model.TeacherConnection{Connection: c}
		if s, ok := f.users.users[c.StudentID]; ok {
			tc.StudentName = s.FullName
			tc.StudentEmail = s.Email
		}
		out = append(out, tc)
	}
	return out, nil
}

// fakeScoreStore is an in-memory ScoreStore.
type fakeScoreStore struct {
	users   *fakeUserStore
	conns   *fakeConnStore
	batches []model.ScoreBatch
	records []model.ScoreRecord
	nextID  int
}

func (f *fakeScoreStore) CreateBatch(ctx context.Context, batch *model.ScoreBatch, rows []model.ValidScoreRow) error {
	f.nextID++
	batch.ID = fmt.Sprintf("batch-%d", f.nextID)
	batch.UploadedAt = time.Now()
	f.batches = append(f.batches, *batch)

	for _, row := range rows {
		f.nextID++
		rec := model.ScoreRecord{
			ID:           fmt.Sprintf("score-%d", f.nextID),
			BatchID:      batch.ID,
			TeacherID:    batch.TeacherID,
			StudentEmail: row.Email,
			Value:        row.Value,
			RecordedAt:   batch.UploadedAt,
		}
		if f.users != nil {
			if u, err := f.users.GetByEmail(ctx, row.Email); err == nil && u.Role == model.RoleStudent {
				rec.StudentID = u.ID
			}
		}
		f.records = append(f.records, rec)
	}
	return nil
}

func (f *fakeScoreStore) ListSeries(ctx context.Context, studentID, studentEmail, teacherID string) ([]model.ScorePoint, error) {
	var out []model.ScorePoint
	for _, rec := range f.records {
		if rec.TeacherID != teacherID {
			continue
		}
		if rec.StudentID == studentID || strings.EqualFold(rec.StudentEmail, studentEmail) {
			out = append(out, model.ScorePoint{ID: rec.ID, Value: rec.Value, RecordedAt: rec.RecordedAt})
		}
	}
	return out, nil
}

func (f *fakeScoreStore) StatsForTeacher(ctx context.Context, teacherID string) (*repository.TeacherStats, error) {
	stats := &repository.TeacherStats{}
	if f.conns != nil {
		for _, c := range f.conns.conns {
			if c.TeacherID == teacherID {
				stats.ConnectedStudents++
			}
		}
	}
	for _, rec := range f.records {
		if rec.TeacherID == teacherID {
			stats.ScoresPublished++
		}
	}
	for _, b := range f.batches {
		if b.TeacherID == teacherID {
			stats.UploadSessions++
		}
	}
	return stats, nil
}
