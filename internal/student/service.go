package student

import (
	"context"
	"errors"
	"strings"

	"github.com/ovsidee/UniversityApp/internal/apperr"
	"github.com/ovsidee/UniversityApp/internal/enrollment"
	"github.com/ovsidee/UniversityApp/internal/pagination"
	"github.com/ovsidee/UniversityApp/internal/session"
	"github.com/ovsidee/UniversityApp/internal/validation"

	"github.com/go-playground/validator/v10"
)

type Service interface {
	CreateStudent(ctx context.Context, in Input) (*Student, error)
	ListStudents(ctx context.Context, principal *session.Principal, page int) (pagination.Page[Student], error)
	AllStudents(ctx context.Context) ([]Student, error)
	GetProfile(ctx context.Context, id int) (*Profile, error)
	UpdateStudent(ctx context.Context, id int, in Input) (*Student, error)
	DeleteStudent(ctx context.Context, id int) error
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

// normalize trims input, lowercases the email and turns a blank phone into NULL.
func normalize(in Input) Input {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone == "" {
			in.Phone = nil
		} else {
			in.Phone = &phone
		}
	}
	return in
}

func (s *service) CreateStudent(ctx context.Context, in Input) (*Student, error) {
	in = normalize(in)
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &Student{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	})
}

// ListStudents pages through all students for admins. A student sees only the
// profile linked to their account, or an empty page when none is linked.
func (s *service) ListStudents(ctx context.Context, principal *session.Principal, page int) (pagination.Page[Student], error) {
	if !principal.IsAdmin() {
		if principal == nil || principal.StudentID == nil {
			return pagination.NewPage[Student](nil, 1, 0), nil
		}
		own, err := s.repo.GetByID(ctx, *principal.StudentID)
		if errors.Is(err, apperr.ErrNotFound) {
			return pagination.NewPage[Student](nil, 1, 0), nil
		}
		if err != nil {
			return pagination.Page[Student]{}, err
		}
		return pagination.NewPage([]Student{*own}, 1, 1), nil
	}

	page = pagination.Clamp(page)
	rows, count, err := s.repo.List(ctx, pagination.Offset(page, pagination.PageSize), pagination.PageSize)
	if err != nil {
		return pagination.Page[Student]{}, err
	}
	return pagination.NewPage(rows, page, count), nil
}

func (s *service) AllStudents(ctx context.Context) ([]Student, error) {
	return s.repo.All(ctx)
}

func (s *service) GetProfile(ctx context.Context, id int) (*Profile, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	courses, err := s.enrollments.CoursesOf(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Profile{Student: student, Enrollments: courses}, nil
}

func (s *service) UpdateStudent(ctx context.Context, id int, in Input) (*Student, error) {
	in = normalize(in)
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	student := &Student{
		ID:        id,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *service) DeleteStudent(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
