package enrollment

import (
	"context"
	"time"

	"github.com/ovsidee/UniversityApp/internal/apperr"
	"github.com/ovsidee/UniversityApp/internal/db"
	"github.com/ovsidee/UniversityApp/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, enrollment *Enrollment) (*Enrollment, error)
	Delete(ctx context.Context, studentID, courseID int) (bool, error)
	UpdateGrade(ctx context.Context, studentID, courseID int, grade *float64) error
	Roster(ctx context.Context, courseID int) ([]RosterEntry, error)
	CoursesOf(ctx context.Context, studentID int) ([]CourseEntry, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, enrollment *Enrollment) (*Enrollment, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(enrollment).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "enrollments", time.Since(start), err)

	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, apperr.Wrap(apperr.ErrEnrollmentExists, err)
		case db.IsForeignKeyViolation(err):
			return nil, apperr.Wrap(apperr.ErrNotFound, err)
		}
		return nil, apperr.Internal(err)
	}
	return enrollment, nil
}

// Delete removes the pair and reports whether it existed. A missing pair is not an error.
func (r *repository) Delete(ctx context.Context, studentID, courseID int) (bool, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Enrollment)(nil)).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "enrollments", time.Since(start), err)

	if err != nil {
		return false, apperr.Internal(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperr.Internal(err)
	}
	return rows > 0, nil
}

// UpdateGrade sets or clears (nil) the grade of an existing pair.
func (r *repository) UpdateGrade(ctx context.Context, studentID, courseID int, grade *float64) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Enrollment)(nil)).
		Set("grade = ?", grade).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "enrollments", time.Since(start), err)

	if err != nil {
		return apperr.Internal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperr.Internal(err)
	}
	if rowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *repository) Roster(ctx context.Context, courseID int) ([]RosterEntry, error) {
	start := time.Now()
	entries := []RosterEntry{}
	err := r.db.NewSelect().
		TableExpr("enrollments AS e").
		ColumnExpr("s.id AS student_id, s.first_name, s.last_name, s.email, e.grade, e.enrollment_date").
		Join("JOIN students AS s ON s.id = e.student_id").
		Where("e.course_id = ?", courseID).
		OrderExpr("s.id ASC").
		Scan(ctx, &entries)

	r.metrics.Database.RecordQuery(ctx, "select", "enrollments", time.Since(start), err)

	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}

func (r *repository) CoursesOf(ctx context.Context, studentID int) ([]CourseEntry, error) {
	start := time.Now()
	entries := []CourseEntry{}
	err := r.db.NewSelect().
		TableExpr("enrollments AS e").
		ColumnExpr("c.id AS course_id, c.name, c.credits, e.grade, e.enrollment_date").
		Join("JOIN courses AS c ON c.id = e.course_id").
		Where("e.student_id = ?", studentID).
		OrderExpr("c.id ASC").
		Scan(ctx, &entries)

	r.metrics.Database.RecordQuery(ctx, "select", "enrollments", time.Since(start), err)

	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}
