package course

import (
	"context"
	"strings"

	"github.com/ovsidee/UniversityApp/internal/enrollment"
	"github.com/ovsidee/UniversityApp/internal/pagination"
	"github.com/ovsidee/UniversityApp/internal/policy"
	"github.com/ovsidee/UniversityApp/internal/session"
	"github.com/ovsidee/UniversityApp/internal/validation"

	"github.com/go-playground/validator/v10"
)

type Service interface {
	CreateCourse(ctx context.Context, in Input) (*Course, error)
	ListCourses(ctx context.Context, page int) (pagination.Page[Course], error)
	AllCourses(ctx context.Context) ([]Course, error)
	GetDetail(ctx context.Context, principal *session.Principal, id int) (*Detail, error)
	UpdateCourse(ctx context.Context, id int, in Input) (*Course, error)
	DeleteCourse(ctx context.Context, id int) error
}

type service struct {
	repo        Repository
	enrollments enrollment.Service
	validate    *validator.Validate
}

func NewService(repo Repository, enrollments enrollment.Service) Service {
	return &service{
		repo:        repo,
		enrollments: enrollments,
		validate:    validation.New(),
	}
}

func (s *service) CreateCourse(ctx context.Context, in Input) (*Course, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, &Course{Name: in.Name, Credits: in.Credits})
}

func (s *service) ListCourses(ctx context.Context, page int) (pagination.Page[Course], error) {
	page = pagination.Clamp(page)
	rows, count, err := s.repo.List(ctx, pagination.Offset(page, pagination.PageSize), pagination.PageSize)
	if err != nil {
		return pagination.Page[Course]{}, err
	}
	return pagination.NewPage(rows, page, count), nil
}

func (s *service) AllCourses(ctx context.Context) ([]Course, error) {
	return s.repo.All(ctx)
}

// GetDetail returns the course with its roster. Grades and emails are only
// included for principals allowed to see them.
func (s *service) GetDetail(ctx context.Context, principal *session.Principal, id int) (*Detail, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	roster, err := s.enrollments.Roster(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Course: course, Students: roster}
	if !policy.CanViewGrades(principal) {
		detail.Students = redact(roster)
	}
	return detail, nil
}

func (s *service) UpdateCourse(ctx context.Context, id int, in Input) (*Course, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	course := &Course{ID: id, Name: in.Name, Credits: in.Credits}
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *service) DeleteCourse(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
