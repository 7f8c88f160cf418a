package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ovsidee/UniversityApp/internal/metrics"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrSessionNotFound = errors.New("session not found or expired")

type Repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) *Repository {
	return &Repository{
		db:      db,
		metrics: m,
	}
}

// Create stores a new session for userID and returns it.
func (r *Repository) Create(ctx context.Context, userID int, ttl time.Duration) (*Session, error) {
	start := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(ttl),
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.NewInsert().Model(s).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "sessions", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return s, nil
}

type principalRow struct {
	UserID    int       `bun:"user_id"`
	Username  string    `bun:"username"`
	Role      string    `bun:"role"`
	StudentID *int      `bun:"student_id"`
	ExpiresAt time.Time `bun:"expires_at"`
}

// Principal resolves a live session to the current state of its user.
func (r *Repository) Principal(ctx context.Context, id string) (*Principal, error) {
	start := time.Now()
	var row principalRow
	err := r.db.NewSelect().
		TableExpr("sessions AS ss").
		ColumnExpr("u.id AS user_id, u.username, r.name AS role, u.student_id, ss.expires_at").
		Join("JOIN users AS u ON u.id = ss.user_id").
		Join("JOIN roles AS r ON r.id = u.role_id").
		Where("ss.id = ?", id).
		Limit(1).
		Scan(ctx, &row)

	r.metrics.Database.RecordQuery(ctx, "select", "sessions", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if !row.ExpiresAt.After(time.Now()) {
		return nil, ErrSessionNotFound
	}

	return &Principal{
		UserID:    row.UserID,
		Username:  row.Username,
		Role:      row.Role,
		StudentID: row.StudentID,
	}, nil
}

// Delete removes a session (logout)
func (r *Repository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*Session)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "sessions", time.Since(start), err)

	return err
}

// DeleteExpired removes all expired sessions (cleanup)
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Session)(nil)).
		Where("expires_at < ?", time.Now().UTC()).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "sessions", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
