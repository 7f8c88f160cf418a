package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ovsidee/UniversityApp/internal/apperr"
	"github.com/ovsidee/UniversityApp/internal/auth"
	"github.com/ovsidee/UniversityApp/internal/config"
	"github.com/ovsidee/UniversityApp/internal/course"
	"github.com/ovsidee/UniversityApp/internal/enrollment"
	"github.com/ovsidee/UniversityApp/internal/metrics"
	"github.com/ovsidee/UniversityApp/internal/session"
	"github.com/ovsidee/UniversityApp/internal/student"

	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

func phone(s string) *string { return &s }

func grade(g float64) *float64 { return &g }

var sampleStudents = []student.Student{
	{FirstName: "Jan", LastName: "Kowalski", Email: "jan.kowalski@example.com", Phone: phone("+48 600 100 200")},
	{FirstName: "Anna", LastName: "Nowak", Email: "anna.nowak@example.com", Phone: phone("+48 600 300 400")},
	{FirstName: "Piotr", LastName: "Wisniewski", Email: "piotr.wisniewski@example.com"},
	{FirstName: "Maria", LastName: "Wojcik", Email: "maria.wojcik@example.com", Phone: phone("555-0101")},
	{FirstName: "Tomasz", LastName: "Lewandowski", Email: "tomasz.lewandowski@example.com"},
	{FirstName: "Katarzyna", LastName: "Zielinska", Email: "katarzyna.zielinska@example.com", Phone: phone("555-0102")},
}

var sampleCourses = []course.Course{
	{Name: "Databases", Credits: 6},
	{Name: "Programming in Go", Credits: 5},
	{Name: "Computer Networks", Credits: 4},
	{Name: "Discrete Mathematics", Credits: 5},
	{Name: "Operating Systems", Credits: 6},
	{Name: "Software Engineering", Credits: 3},
}

// sampleEnrollments index into sampleStudents and sampleCourses.
var sampleEnrollments = []struct {
	student, course int
	grade           *float64
	date            string
}{
	{0, 0, grade(4.5), "2025-10-01"},
	{0, 1, nil, "2025-10-01"},
	{1, 0, grade(5), "2025-10-02"},
	{1, 2, grade(3.5), "2025-10-02"},
	{2, 3, nil, "2025-10-03"},
	{3, 4, grade(4), "2025-10-04"},
	{4, 1, grade(3), "2025-10-05"},
}

// Seed creates the schema, ensures the three roles and, when the students
// table is empty, inserts sample rows. The admin login is created whenever
// a password is configured and the username is free.
func Seed(ctx context.Context, database *bun.DB, cfg config.SeedConfig, m *metrics.Metrics, logger *slog.Logger) error {
	if err := Migrate(ctx, database); err != nil {
		return err
	}

	users := auth.NewRepository(database, m)
	if err := users.EnsureRoles(ctx, session.RoleAdmin, session.RoleStudent, session.RoleGuest); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	if !cfg.Enabled {
		return nil
	}

	if err := seedAdmin(ctx, users, cfg, logger); err != nil {
		return err
	}

	count, err := database.NewSelect().Model((*student.Student)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count students: %w", err)
	}
	if count > 0 {
		logger.Info("sample data skipped, students table not empty", "students", count)
		return nil
	}

	err = database.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		students := append([]student.Student(nil), sampleStudents...)
		for i := range students {
			if _, err := tx.NewInsert().Model(&students[i]).Returning("*").Exec(ctx); err != nil {
				return err
			}
		}

		courses := append([]course.Course(nil), sampleCourses...)
		for i := range courses {
			if _, err := tx.NewInsert().Model(&courses[i]).Returning("*").Exec(ctx); err != nil {
				return err
			}
		}

		rows := make([]enrollment.Enrollment, 0, len(sampleEnrollments))
		for _, e := range sampleEnrollments {
			rows = append(rows, enrollment.Enrollment{
				StudentID:      students[e.student].ID,
				CourseID:       courses[e.course].ID,
				Grade:          e.grade,
				EnrollmentDate: e.date,
			})
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to seed sample data: %w", err)
	}

	logger.Info("sample data seeded",
		"students", len(sampleStudents),
		"courses", len(sampleCourses),
		"enrollments", len(sampleEnrollments),
	)
	return nil
}

func seedAdmin(ctx context.Context, users auth.Repository, cfg config.SeedConfig, logger *slog.Logger) error {
	if cfg.AdminPassword == "" {
		logger.Warn("no admin password configured, admin user not seeded")
		return nil
	}

	if _, err := users.GetByUsername(ctx, cfg.AdminUsername); err == nil {
		return nil
	}

	role, err := users.RoleByName(ctx, session.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to load admin role: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = users.CreateUser(ctx, &auth.User{
		Username: cfg.AdminUsername,
		Password: string(hash),
		RoleID:   role.ID,
	})
	if err != nil && apperr.KindOf(err) != apperr.KindConflict {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user seeded", "username", cfg.AdminUsername)
	return nil
}
