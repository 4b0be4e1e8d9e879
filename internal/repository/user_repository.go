package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scoretrack/scoretrack-backend/internal/model"
)

// Unique constraint violations, distinguished by constraint name.
var (
	ErrDuplicateEmail       = errors.New("user with this email already exists")
	ErrDuplicateTeacherCode = errors.New("teacher code already taken")
)

// UserRepository handles account profile data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, email, password_hash, role, COALESCE(subject, ''), COALESCE(teacher_code, ''), created_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.Subject, &u.TeacherCode, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, email, password_hash, role, COALESCE(subject, ''), COALESCE(teacher_code, ''), created_at
		 FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email),
	).Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.Subject, &u.TeacherCode, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByTeacherCode retrieves a teacher by their unique code. The lookup trims
// surrounding whitespace and is case-insensitive.
func (r *UserRepository) GetByTeacherCode(ctx context.Context, code string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, email, password_hash, role, COALESCE(subject, ''), COALESCE(teacher_code, ''), created_at
		 FROM users WHERE role = 'teacher' AND lower(teacher_code) = lower($1)`, strings.TrimSpace(code),
	).Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.Subject, &u.TeacherCode, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user. Email is stored lowercased. Subject and teacher
// code are NULL for students.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (full_name, email, password_hash, role, subject, teacher_code)
		 VALUES ($1, lower($2), $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		 RETURNING id, created_at`,
		u.FullName, u.Email, u.PasswordHash, u.Role, u.Subject, u.TeacherCode,
	).Scan(&u.ID, &u.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "teacher_code") {
				return ErrDuplicateTeacherCode
			}
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}
