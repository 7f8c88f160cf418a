// Package bootstrap creates the schema and seeds a fresh database.
package bootstrap

import (
	"context"

	"github.com/ovsidee/UniversityApp/internal/auth"
	"github.com/ovsidee/UniversityApp/internal/course"
	"github.com/ovsidee/UniversityApp/internal/db"
	"github.com/ovsidee/UniversityApp/internal/enrollment"
	"github.com/ovsidee/UniversityApp/internal/session"
	"github.com/ovsidee/UniversityApp/internal/student"

	"github.com/uptrace/bun"
)

// Tables lists the schema in dependency order.
func Tables() []db.Table {
	return []db.Table{
		{Model: (*auth.Role)(nil)},
		{Model: (*student.Student)(nil)},
		{Model: (*course.Course)(nil)},
		{Model: (*enrollment.Enrollment)(nil), ForeignKeys: enrollment.ForeignKeys},
		{Model: (*auth.User)(nil), ForeignKeys: auth.UserForeignKeys},
		{Model: (*session.Session)(nil), ForeignKeys: session.ForeignKeys},
	}
}

// TableNames lists tables children first, the order to empty them in.
func TableNames() []string {
	return []string{"sessions", "users", "enrollments", "courses", "students", "roles"}
}

func Migrate(ctx context.Context, idb bun.IDB) error {
	return db.RunMigrations(ctx, idb, Tables()...)
}
