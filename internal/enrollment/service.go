package enrollment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ovsidee/UniversityApp/internal/events"
	"github.com/ovsidee/UniversityApp/internal/metrics"
	"github.com/ovsidee/UniversityApp/internal/validation"

	"github.com/go-playground/validator/v10"
)

type Service interface {
	Enroll(ctx context.Context, req EnrollRequest) (*Enrollment, error)
	Unenroll(ctx context.Context, studentID, courseID int) error
	UpdateGrade(ctx context.Context, studentID, courseID int, grade *float64) error
	Roster(ctx context.Context, courseID int) ([]RosterEntry, error)
	CoursesOf(ctx context.Context, studentID int) ([]CourseEntry, error)
}

type service struct {
	repo      Repository
	validate  *validator.Validate
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{
		repo:      repo,
		validate:  validation.New(),
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *service) Enroll(ctx context.Context, req EnrollRequest) (*Enrollment, error) {
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, err
	}
	if req.Grade != nil {
		if err := validation.Var(s.validate, *req.Grade, "grade"); err != nil {
			return nil, err
		}
	}

	date := req.EnrollmentDate
	if date == "" {
		date = s.now().Format(validation.DateLayout)
	}

	created, err := s.repo.Create(ctx, &Enrollment{
		StudentID:      req.StudentID,
		CourseID:       req.CourseID,
		Grade:          req.Grade,
		EnrollmentDate: date,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEnrollment(ctx)
	s.publish(ctx, events.TypeStudentEnrolled, created)

	return created, nil
}

// Unenroll is idempotent; metrics and events follow only an actual removal.
func (s *service) Unenroll(ctx context.Context, studentID, courseID int) error {
	removed, err := s.repo.Delete(ctx, studentID, courseID)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}

	s.metrics.RecordUnenrollment(ctx)
	s.publish(ctx, events.TypeStudentUnenrolled, &Enrollment{StudentID: studentID, CourseID: courseID})
	return nil
}

// UpdateGrade sets the grade; nil clears it.
func (s *service) UpdateGrade(ctx context.Context, studentID, courseID int, grade *float64) error {
	if grade != nil {
		if err := validation.Var(s.validate, *grade, "grade"); err != nil {
			return err
		}
	}

	if err := s.repo.UpdateGrade(ctx, studentID, courseID, grade); err != nil {
		return err
	}

	s.metrics.RecordGradeUpdate(ctx)
	s.publish(ctx, events.TypeGradeUpdated, &Enrollment{StudentID: studentID, CourseID: courseID, Grade: grade})
	return nil
}

func (s *service) Roster(ctx context.Context, courseID int) ([]RosterEntry, error) {
	return s.repo.Roster(ctx, courseID)
}

func (s *service) CoursesOf(ctx context.Context, studentID int) ([]CourseEntry, error) {
	return s.repo.CoursesOf(ctx, studentID)
}

func (s *service) publish(ctx context.Context, eventType string, e *Enrollment) {
	key := fmt.Sprintf("%d:%d", e.StudentID, e.CourseID)
	err := s.publisher.Publish(ctx, events.NewEvent(eventType, key, e))
	s.metrics.RecordEventPublished(ctx, eventType, err)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish enrollment event", "type", eventType, "key", key, "error", err)
	}
}
