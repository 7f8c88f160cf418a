package course

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ovsidee/UniversityApp/internal/apperr"
	"github.com/ovsidee/UniversityApp/internal/db"
	"github.com/ovsidee/UniversityApp/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, course *Course) (*Course, error)
	List(ctx context.Context, offset, limit int) ([]Course, int, error)
	All(ctx context.Context) ([]Course, error)
	GetByID(ctx context.Context, id int) (*Course, error)
	Update(ctx context.Context, course *Course) error
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
		return apperr.Wrap(apperr.ErrCourseExists, err)
	}
	return apperr.Internal(err)
}

func (r *repository) Create(ctx context.Context, course *Course) (*Course, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(course).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "courses", time.Since(start), err)

	if err != nil {
		return nil, classify(err)
	}
	return course, nil
}

func (r *repository) List(ctx context.Context, offset, limit int) ([]Course, int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().Model((*Course)(nil)).Count(ctx)
	r.metrics.Database.RecordQuery(ctx, "count", "courses", time.Since(start), err)
	if err != nil {
		return nil, 0, classify(err)
	}

	start = time.Now()
	courses := []Course{}
	err = r.db.NewSelect().
		Model(&courses).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)

	if err != nil {
		return nil, 0, classify(err)
	}
	return courses, count, nil
}

func (r *repository) All(ctx context.Context) ([]Course, error) {
	start := time.Now()
	courses := []Course{}
	err := r.db.NewSelect().Model(&courses).Order("name ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)

	if err != nil {
		return nil, classify(err)
	}
	return courses, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Course, error) {
	start := time.Now()
	course := new(Course)
	err := r.db.NewSelect().Model(course).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)

	if err != nil {
		return nil, classify(err)
	}
	return course, nil
}

func (r *repository) Update(ctx context.Context, course *Course) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(course).
		Column("name", "credits").
		WherePK().
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "courses", time.Since(start), err)

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

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&Course{ID: id}).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "courses", time.Since(start), err)

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
