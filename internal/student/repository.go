package student

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ovsidee/UniversityApp/internal/apperr"
	"github.com/ovsidee/UniversityApp/internal/db"
	"github.com/ovsidee/UniversityApp/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, student *Student) (*Student, error)
	List(ctx context.Context, offset, limit int) ([]Student, int, error)
	All(ctx context.Context) ([]Student, error)
	GetByID(ctx context.Context, id int) (*Student, error)
	GetByEmail(ctx context.Context, email string) (*Student, error)
	Update(ctx context.Context, student *Student) error
	Delete(ctx context.Context, id int) error
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

func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if db.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.ErrEmailExists, err)
	}
	return apperr.Internal(err)
}

func (r *repository) Create(ctx context.Context, student *Student) (*Student, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(student).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "students", time.Since(start), err)

	if err != nil {
		return nil, classify(err)
	}
	return student, nil
}

// List returns one page ordered by id and the total row count.
func (r *repository) List(ctx context.Context, offset, limit int) ([]Student, int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().Model((*Student)(nil)).Count(ctx)
	r.metrics.Database.RecordQuery(ctx, "count", "students", time.Since(start), err)
	if err != nil {
		return nil, 0, classify(err)
	}

	start = time.Now()
	students := []Student{}
	err = r.db.NewSelect().
		Model(&students).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		return nil, 0, classify(err)
	}
	return students, count, nil
}

// All returns every student ordered by first name.
func (r *repository) All(ctx context.Context) ([]Student, error) {
	start := time.Now()
	students := []Student{}
	err := r.db.NewSelect().Model(&students).Order("first_name ASC", "id ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		return nil, classify(err)
	}
	return students, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		return nil, classify(err)
	}
	return student, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().
		Model(student).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		return nil, classify(err)
	}
	return student, nil
}

func (r *repository) Update(ctx context.Context, student *Student) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(student).
		Column("first_name", "last_name", "email", "phone").
		WherePK().
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "students", time.Since(start), err)

	if err != nil {
		return classify(err)
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

// Delete removes the student; enrollments cascade and linked users are unlinked.
func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	student := &Student{ID: id}
	result, err := r.db.NewDelete().Model(student).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "students", time.Since(start), err)

	if err != nil {
		return classify(err)
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
