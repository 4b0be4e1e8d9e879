package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scoretrack/scoretrack-backend/internal/model"
)

// ScoreRepository handles score record and batch data access.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new ScoreRepository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// CreateBatch persists one upload session: the batch header and all accepted
// rows in a single transaction. Every record shares the batch's uploaded_at
// as its recorded_at. The student_id of each row is resolved from the email
// at insert time when a matching student account exists.
func (r *ScoreRepository) CreateBatch(ctx context.Context, batch *model.ScoreBatch, rows []model.ValidScoreRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO score_batches (teacher_id, accepted_count, skipped_count)
		 VALUES ($1, $2, $3)
		 RETURNING id, uploaded_at`,
		batch.TeacherID, batch.AcceptedCount, batch.SkippedCount,
	).Scan(&batch.ID, &batch.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	b := &pgx.Batch{}
	for _, row := range rows {
		b.Queue(
			`INSERT INTO scores (batch_id, teacher_id, student_id, student_email, value, recorded_at)
			 VALUES ($1, $2,
			         (SELECT id FROM users WHERE role = 'student' AND lower(email) = $4),
			         $4, $3, $5)`,
			batch.ID, batch.TeacherID, row.Value, row.Email, batch.UploadedAt,
		)
	}
	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("insert scores: %w", err)
	}

	return tx.Commit(ctx)
}

// ListSeries retrieves the score points for one (student, teacher) pair,
// oldest first. Matching is by resolved student id or by the student's email,
// so scores published before the student signed up or connected still appear.
func (r *ScoreRepository) ListSeries(ctx context.Context, studentID, studentEmail, teacherID string) ([]model.ScorePoint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, value, recorded_at
		 FROM scores
		 WHERE teacher_id = $1 AND (student_id = $2 OR lower(student_email) = lower($3))
		 ORDER BY recorded_at ASC, seq ASC`,
		teacherID, studentID, studentEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []model.ScorePoint
	for rows.Next() {
		var p model.ScorePoint
		if err := rows.Scan(&p.ID, &p.Value, &p.RecordedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// TeacherStats holds the teacher dashboard counters.
type TeacherStats struct {
	ConnectedStudents int `json:"connected_students"`
	ScoresPublished   int `json:"scores_published"`
	UploadSessions    int `json:"upload_sessions"`
}

// StatsForTeacher computes the dashboard counters for one teacher.
func (r *ScoreRepository) StatsForTeacher(ctx context.Context, teacherID string) (*TeacherStats, error) {
	stats := &TeacherStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM connections WHERE teacher_id = $1),
		   (SELECT COUNT(*) FROM scores WHERE teacher_id = $1),
		   (SELECT COUNT(*) FROM score_batches WHERE teacher_id = $1)`,
		teacherID,
	).Scan(&stats.ConnectedStudents, &stats.ScoresPublished, &stats.UploadSessions)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
