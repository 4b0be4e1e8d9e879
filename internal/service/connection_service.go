package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/scoretrack/scoretrack-backend/internal/model"
	"github.com/scoretrack/scoretrack-backend/internal/repository"
)

// Connection errors surfaced to handlers.
var (
	ErrTeacherCodeNotFound = errors.New("no teacher with this code")
	ErrAlreadyConnected    = errors.New("already connected to this teacher")
)

// TeacherLookup resolves teachers by their shareable code.
type TeacherLookup interface {
	GetByTeacherCode(ctx context.Context, code string) (*model.User, error)
}

// ConnectionStore is the connection persistence needed by ConnectionService.
type ConnectionStore interface {
	Exists(ctx context.Context, studentID, teacherID string) (bool, error)
	Create(ctx context.Context, c *model.Connection) error
	ListForStudent(ctx context.Context, studentID string) ([]model.StudentConnection, error)
	ListForTeacher(ctx context.Context, teacherID string) ([]model.TeacherConnection, error)
}

// ConnectionService manages the student–teacher relation.
type ConnectionService struct {
	store    ConnectionStore
	teachers TeacherLookup
}

// NewConnectionService creates a new ConnectionService.
func NewConnectionService(store ConnectionStore, teachers TeacherLookup) *ConnectionService {
	return &ConnectionService{store: store, teachers: teachers}
}

// Connect links a student to the teacher whose code matches, trimmed and
// case-insensitively. The existence check gives a fast user-facing error;
// the store's unique constraint is the real enforcement, and its violation
// is reported as ErrAlreadyConnected all the same.
func (s *ConnectionService) Connect(ctx context.Context, studentID, teacherCode string) (*model.StudentConnection, error) {
	code := strings.TrimSpace(teacherCode)

	teacher, err := s.teachers.GetByTeacherCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeacherCodeNotFound
		}
		return nil, fmt.Errorf("lookup teacher: %w", err)
	}

	exists, err := s.store.Exists(ctx, studentID, teacher.ID)
	if err != nil {
		return nil, fmt.Errorf("check connection: %w", err)
	}
	if exists {
		return nil, ErrAlreadyConnected
	}

	conn := &model.Connection{StudentID: studentID, TeacherID: teacher.ID}
	if err := s.store.Create(ctx, conn); err != nil {
		if errors.Is(err, repository.ErrDuplicateConnection) {
			return nil, ErrAlreadyConnected
		}
		return nil, fmt.Errorf("create connection: %w", err)
	}

	return &model.StudentConnection{
		Connection:  *conn,
		TeacherName: teacher.FullName,
		Subject:     teacher.Subject,
		TeacherCode: teacher.TeacherCode,
	}, nil
}

// ListForStudent returns the student's connections, most recent first.
func (s *ConnectionService) ListForStudent(ctx context.Context, studentID string) ([]model.StudentConnection, error) {
	conns, err := s.store.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []model.StudentConnection{}
	}
	return conns, nil
}

// ListForTeacher returns the teacher's roster of connected students.
func (s *ConnectionService) ListForTeacher(ctx context.Context, teacherID string) ([]model.TeacherConnection, error) {
	conns, err := s.store.ListForTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []model.TeacherConnection{}
	}
	return conns, nil
}
