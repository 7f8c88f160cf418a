package student

import (
	"github.com/ovsidee/UniversityApp/internal/enrollment"

	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID        int     `bun:"id,pk,autoincrement" json:"id"`
	FirstName string  `bun:"first_name,notnull" json:"first_name"`
	LastName  string  `bun:"last_name,notnull" json:"last_name"`
	Email     string  `bun:"email,notnull,unique" json:"email"`
	Phone     *string `bun:"phone" json:"phone"`
}

// Input is the body of create and update.
type Input struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,phone,max=30"`
}

// Profile is a student with the courses they are enrolled in.
type Profile struct {
	Student     *Student                 `json:"student"`
	Enrollments []enrollment.CourseEntry `json:"enrollments"`
}
