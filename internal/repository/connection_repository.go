package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scoretrack/scoretrack-backend/internal/model"
)

// ErrDuplicateConnection is returned when the (student, teacher) pair already
// exists. The unique index is the source of truth; the service's existence
// check is only a fast path.
var ErrDuplicateConnection = errors.New("connection already exists")

// ConnectionRepository handles student–teacher connection data access.
type ConnectionRepository struct {
	pool *pgxpool.Pool
}

// NewConnectionRepository creates a new ConnectionRepository.
func NewConnectionRepository(pool *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{pool: pool}
}

// Exists reports whether a connection exists for the given pair.
func (r *ConnectionRepository) Exists(ctx context.Context, studentID, teacherID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM connections WHERE student_id = $1 AND teacher_id = $2)`,
		studentID, teacherID,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new connection. A unique violation on the pair is
// translated into ErrDuplicateConnection.
func (r *ConnectionRepository) Create(ctx context.Context, c *model.Connection) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO connections (student_id, teacher_id)
		 VALUES ($1, $2)
		 RETURNING id, connected_at`,
		c.StudentID, c.TeacherID,
	).Scan(&c.ID, &c.ConnectedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateConnection
		}
		return err
	}
	return nil
}

// ListForStudent retrieves a student's connections joined with the teacher
// profile, most recent first.
func (r *ConnectionRepository) ListForStudent(ctx context.Context, studentID string) ([]model.StudentConnection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.student_id, c.teacher_id, c.connected_at,
		        t.full_name, COALESCE(t.subject, ''), COALESCE(t.teacher_code, '')
		 FROM connections c
		 JOIN users t ON t.id = c.teacher_id
		 WHERE c.student_id = $1
		 ORDER BY c.connected_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []model.StudentConnection
	for rows.Next() {
		var sc model.StudentConnection
		if err := rows.Scan(&sc.ID, &sc.StudentID, &sc.TeacherID, &sc.ConnectedAt,
			&sc.TeacherName, &sc.Subject, &sc.TeacherCode); err != nil {
			return nil, err
		}
		conns = append(conns, sc)
	}
	return conns, rows.Err()
}

// ListForTeacher retrieves a teacher's connections joined with student info
// and per-student score counts.
func (r *ConnectionRepository) ListForTeacher(ctx context.Context, teacherID string) ([]model.TeacherConnection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.student_id, c.teacher_id, c.connected_at,
		        s.full_name, s.email,
		        (SELECT COUNT(*) FROM scores sc
		         WHERE sc.teacher_id = c.teacher_id
		           AND (sc.student_id = c.student_id OR lower(sc.student_email) = lower(s.email)))
		 FROM connections c
		 JOIN users s ON s.id = c.student_id
		 WHERE c.teacher_id = $1
		 ORDER BY c.connected_at DESC`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []model.TeacherConnection
	for rows.Next() {
		var tc model.TeacherConnection
		if err := rows.Scan(&tc.ID, &tc.StudentID, &tc.TeacherID, &tc.ConnectedAt,
			&tc.StudentName, &tc.StudentEmail, &tc.ScoreCount); err != nil {
			return nil, err
		}
		conns = append(conns, tc)
	}
	return conns, rows.Err()
}
