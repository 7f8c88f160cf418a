package enrollment

import (
	"github.com/uptrace/bun"
)

// Enrollment links one student to one course. The pair is unique.
type Enrollment struct {
	bun.BaseModel `bun:"table:enrollments,alias:e"`

	ID             int      `bun:"id,pk,autoincrement" json:"id"`
	StudentID      int      `bun:"student_id,notnull,unique:enrollment_pair" json:"student_id"`
	CourseID       int      `bun:"course_id,notnull,unique:enrollment_pair" json:"course_id"`
	Grade          *float64 `bun:"grade" json:"grade"`
	EnrollmentDate string   `bun:"enrollment_date,notnull" json:"enrollment_date"`
}

// ForeignKeys are the table constraints; removing a student or course removes its enrollments.
var ForeignKeys = []string{
	`("student_id") REFERENCES "students" ("id") ON DELETE CASCADE`,
	`("course_id") REFERENCES "courses" ("id") ON DELETE CASCADE`,
}

// EnrollRequest is the body of both enroll routes; the path supplies one of the ids.
type EnrollRequest struct {
	StudentID      int      `json:"student_id" validate:"required"`
	CourseID       int      `json:"course_id" validate:"required"`
	Grade          *float64 `json:"grade"`
	EnrollmentDate string   `json:"enrollment_date" validate:"omitempty,datetime=2006-01-02"`
}

// RosterEntry is one student on a course roster.
type RosterEntry struct {
	StudentID      int      `bun:"student_id" json:"student_id"`
	FirstName      string   `bun:"first_name" json:"first_name"`
	LastName       string   `bun:"last_name" json:"last_name"`
	Email          string   `bun:"email" json:"email"`
	Grade          *float64 `bun:"grade" json:"grade"`
	EnrollmentDate string   `bun:"enrollment_date" json:"enrollment_date"`
}

// CourseEntry is one course on a student's profile.
type CourseEntry struct {
	CourseID       int      `bun:"course_id" json:"course_id"`
	Name           string   `bun:"name" json:"name"`
	Credits        int      `bun:"credits" json:"credits"`
	Grade          *float64 `bun:"grade" json:"grade"`
	EnrollmentDate string   `bun:"enrollment_date" json:"enrollment_date"`
}
