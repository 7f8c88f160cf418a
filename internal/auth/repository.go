package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ovsidee/UniversityApp/internal/apperr"
	"github.com/ovsidee/UniversityApp/internal/db"
	"github.com/ovsidee/UniversityApp/internal/metrics"
	"github.com/ovsidee/UniversityApp/internal/student"

	"github.com/uptrace/bun"
)

type Repository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	RoleByName(ctx context.Context, name string) (*Role, error)
	EnsureRoles(ctx context.Context, names ...string) error
	CreateUser(ctx context.Context, user *User) (*User, error)
	Register(ctx context.Context, user *User, profile *student.Student) (*Registration, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return getByUsername(ctx, r.db, r.metrics, username)
}

func getByUsername(ctx context.Context, idb bun.IDB, m *metrics.Metrics, username string) (*User, error) {
	start := time.Now()
	user := new(User)
	err := idb.NewSelect().
		Model(user).
		Relation("Role").
		Where("u.username = ?", username).
		Scan(ctx)

	m.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func (r *repository) RoleByName(ctx context.Context, name string) (*Role, error) {
	return roleByName(ctx, r.db, r.metrics, name)
}

func roleByName(ctx context.Context, idb bun.IDB, m *metrics.Metrics, name string) (*Role, error) {
	start := time.Now()
	role := new(Role)
	err := idb.NewSelect().Model(role).Where("name = ?", name).Scan(ctx)

	m.Database.RecordQuery(ctx, "select", "roles", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Internal(err)
	}
	return role, nil
}

// EnsureRoles inserts any missing role names.
func (r *repository) EnsureRoles(ctx context.Context, names ...string) error {
	for _, name := range names {
		start := time.Now()
		_, err := r.db.NewInsert().
			Model(&Role{Name: name}).
			On("CONFLICT (name) DO NOTHING").
			Returning("NULL").
			Exec(ctx)

		r.metrics.Database.RecordQuery(ctx, "insert", "roles", time.Since(start), err)

		if err != nil {
			return apperr.Internal(err)
		}
	}
	return nil
}

func (r *repository) CreateUser(ctx context.Context, user *User) (*User, error) {
	return createUser(ctx, r.db, r.metrics, user)
}

func createUser(ctx context.Context, idb bun.IDB, m *metrics.Metrics, user *User) (*User, error) {
	start := time.Now()
	_, err := idb.NewInsert().Model(user).Returning("*").Exec(ctx)

	m.Database.RecordQuery(ctx, "insert", "users", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.ErrUsernameTaken, err)
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// hasLogin reports whether a user is already linked to the student.
func hasLogin(ctx context.Context, idb bun.IDB, m *metrics.Metrics, studentID int) (bool, error) {
	start := time.Now()
	exists, err := idb.NewSelect().
		Model((*User)(nil)).
		Where("u.student_id = ?", studentID).
		Exists(ctx)

	m.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		return false, apperr.Internal(err)
	}
	return exists, nil
}

// Register creates the user and, unless a student with the same email
// already exists, its student profile. Both inserts share one transaction.
// A student that already has a login cannot be claimed a second time.
func (r *repository) Register(ctx context.Context, user *User, profile *student.Student) (*Registration, error) {
	var reg Registration

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := getByUsername(ctx, tx, r.metrics, user.Username); err == nil {
			return apperr.ErrUsernameTaken
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		role, err := roleByName(ctx, tx, r.metrics, user.Role.Name)
		if err != nil {
			return err
		}
		user.RoleID = role.ID

		students := student.NewRepository(tx, r.metrics)
		existing, err := students.GetByEmail(ctx, profile.Email)
		switch {
		case err == nil:
			claimed, err := hasLogin(ctx, tx, r.metrics, existing.ID)
			if err != nil {
				return err
			}
			if claimed {
				return apperr.ErrEmailExists
			}
			reg.Linked = true
			profile = existing
		case errors.Is(err, apperr.ErrNotFound):
			if profile, err = students.Create(ctx, profile); err != nil {
				return err
			}
		default:
			return err
		}

		user.StudentID = &profile.ID
		if _, err := createUser(ctx, tx, r.metrics, user); err != nil {
			return err
		}

		reg.UserID = user.ID
		reg.StudentID = profile.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
