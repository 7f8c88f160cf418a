package testdb

import (
	"context"
	"net/http"
	"testing"

	"github.com/ovsidee/UniversityApp/internal/course"
	"github.com/ovsidee/UniversityApp/internal/enrollment"
	"github.com/ovsidee/UniversityApp/internal/session"
	"github.com/ovsidee/UniversityApp/internal/student"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// InsertStudent stores s and returns its id. A non-zero s.ID is kept.
func InsertStudent(t *testing.T, database bun.IDB, s student.Student) int {
	t.Helper()

	_, err := database.NewInsert().Model(&s).Returning("*").Exec(context.Background())
	require.NoError(t, err, "failed to insert student %s", s.Email)
	return s.ID
}

// InsertCourse stores c and returns its id. A non-zero c.ID is kept.
func InsertCourse(t *testing.T, database bun.IDB, c course.Course) int {
	t.Helper()

	_, err := database.NewInsert().Model(&c).Returning("*").Exec(context.Background())
	require.NoError(t, err, "failed to insert course %s", c.Name)
	return c.ID
}

func InsertEnrollment(t *testing.T, database bun.IDB, e enrollment.Enrollment) {
	t.Helper()

	if e.EnrollmentDate == "" {
		e.EnrollmentDate = "2025-10-01"
	}
	_, err := database.NewInsert().Model(&e).Returning("*").Exec(context.Background())
	require.NoError(t, err, "failed to insert enrollment %d/%d", e.StudentID, e.CourseID)
}

// As wraps h so every request runs as p. A nil p is a guest.
func As(p *session.Principal, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			r = r.WithContext(session.WithPrincipal(r.Context(), p))
		}
		h.ServeHTTP(w, r)
	})
}

func Admin() *session.Principal {
	return &session.Principal{UserID: 1, Username: "admin", Role: session.RoleAdmin}
}

// Student returns a student principal linked to studentID, or unlinked when it is 0.
func Student(studentID int) *session.Principal {
	p := &session.Principal{UserID: 100 + studentID, Username: "student", Role: session.RoleStudent}
	if studentID != 0 {
		p.StudentID = &studentID
	}
	return p
}
