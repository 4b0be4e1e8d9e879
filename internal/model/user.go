package model

import "time"

// Role distinguishes the two account types.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// User represents an account profile. Teachers additionally carry a subject
// and a unique, immutable teacher code assigned at signup.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Subject      string    `json:"subject,omitempty"`
	TeacherCode  string    `json:"teacher_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignupRequest is the payload for account creation.
// Subject is required for teachers and ignored for students.
type SignupRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=student teacher"`
	Subject  string `json:"subject" binding:"omitempty,min=2,max=100"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
