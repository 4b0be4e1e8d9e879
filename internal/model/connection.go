package model

import "time"

// Connection links one student to one teacher. The (student, teacher) pair is
// unique and a connection is never mutated after creation.
type Connection struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	TeacherID   string    `json:"teacher_id"`
	ConnectedAt time.Time `json:"connected_at"`
}

// ConnectRequest is the payload for connecting to a teacher by code.
type ConnectRequest struct {
	TeacherCode string `json:"teacher_code" binding:"required,min=4,max=20"`
}

// StudentConnection is a connection joined with the teacher's profile,
// as shown on the student dashboard.
type StudentConnection struct {
	Connection
	TeacherName string `json:"teacher_name"`
	Subject     string `json:"subject"`
	TeacherCode string `json:"teacher_code"`
}

// TeacherConnection is a connection joined with the student's profile and
// score count, as shown on the teacher roster.
type TeacherConnection struct {
	Connection
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
	ScoreCount   int    `json:"score_count"`
}
