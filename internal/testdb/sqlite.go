// Package testdb provides in-memory SQLite databases for tests.
//
// Usage:
//
//	func TestMyService(t *testing.T) {
//	    database := testdb.SetupSQLite(t)
//
//	    t.Run("Test1", func(t *testing.T) {
//	        testdb.CleanupTables(t, database, "enrollments", "students")
//	        // ... test
//	    })
//	}
package testdb

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ovsidee/UniversityApp/internal/auth"
	"github.com/ovsidee/UniversityApp/internal/bootstrap"
	"github.com/ovsidee/UniversityApp/internal/db"
	"github.com/ovsidee/UniversityApp/internal/metrics"
	"github.com/ovsidee/UniversityApp/internal/session"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var counter atomic.Int64

// SetupSQLite opens a private in-memory database with the full schema and
// the three roles. It is closed when the test ends.
func SetupSQLite(t *testing.T) *bun.DB {
	t.Helper()

	name := fmt.Sprintf("testdb_%d", counter.Add(1))
	database, err := db.NewSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name))
	require.NoError(t, err)

	// A shared-cache memory database lives as long as one connection does.
	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)
	database.SetConnMaxLifetime(0)

	ctx := context.Background()
	require.NoError(t, bootstrap.Migrate(ctx, database))
	SeedRoles(t, database)

	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// SeedRoles inserts the admin, student and guest roles if missing.
func SeedRoles(t *testing.T, database *bun.DB) {
	t.Helper()

	roles := auth.NewRepository(database, metrics.NewMock())
	err := roles.EnsureRoles(context.Background(), session.RoleAdmin, session.RoleStudent, session.RoleGuest)
	require.NoError(t, err, "failed to seed roles")
}

// CleanupTables deletes every row of the given tables, children first.
// With no arguments all application tables except roles are emptied.
func CleanupTables(t *testing.T, database *bun.DB, tables ...string) {
	t.Helper()

	if len(tables) == 0 {
		for _, table := range bootstrap.TableNames() {
			if table != "roles" {
				tables = append(tables, table)
			}
		}
	}

	ctx := context.Background()
	for _, table := range tables {
		_, err := database.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "failed to clean table: %s", table)
	}
}
