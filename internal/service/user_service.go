package service

import (
	"context"
	"errors"
	"strings"

	"github.com/scoretrack/scoretrack-backend/internal/model"
	"github.com/scoretrack/scoretrack-backend/internal/repository"
)

// ErrSubjectRequired is returned when a teacher signs up without a subject.
var ErrSubjectRequired = errors.New("subject is required for teachers")

// codeAttempts bounds the retry loop on teacher code collisions. With 9000
// possible suffixes per prefix, collisions are rare until a prefix is nearly
// saturated.
const codeAttempts = 5

// UserStore is the account persistence needed by UserService.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// UserService handles account creation and profile lookups.
type UserService struct {
	store UserStore
	auth  *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, auth *AuthService) *UserService {
	return &UserService{store: store, auth: auth}
}

// Signup creates a new account. Teachers get a generated teacher code; the
// store's unique index is the real uniqueness check and generation is retried
// on a collision.
func (s *UserService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	subject := strings.TrimSpace(req.Subject)
	if req.Role == model.RoleTeacher && subject == "" {
		return nil, ErrSubjectRequired
	}
	if req.Role == model.RoleStudent {
		subject = ""
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         req.Role,
		Subject:      subject,
	}

	if req.Role != model.RoleTeacher {
		return u, s.store.Create(ctx, u)
	}

	for attempt := 0; ; attempt++ {
		u.TeacherCode = GenerateTeacherCode(subject)
		err := s.store.Create(ctx, u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repository.ErrDuplicateTeacherCode) || attempt+1 >= codeAttempts {
			return nil, err
		}
	}
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.store.GetByID(ctx, id)
}

// GetByEmail retrieves a user by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.store.GetByEmail(ctx, email)
}
