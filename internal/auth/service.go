package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ovsidee/UniversityApp/internal/apperr"
	"github.com/ovsidee/UniversityApp/internal/events"
	"github.com/ovsidee/UniversityApp/internal/metrics"
	"github.com/ovsidee/UniversityApp/internal/session"
	"github.com/ovsidee/UniversityApp/internal/student"
	"github.com/ovsidee/UniversityApp/internal/validation"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash keeps login timing similar for unknown usernames.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unused-Password!"), bcrypt.DefaultCost)

type Service struct {
	repo      Repository
	sessions  *session.Repository
	manager   *session.Manager
	publisher events.Publisher
	validate  *validator.Validate
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(repo Repository, sessions *session.Repository, manager *session.Manager, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		repo:      repo,
		sessions:  sessions,
		manager:   manager,
		publisher: publisher,
		validate:  validation.New(),
		metrics:   m,
		logger:    logger,
	}
}

// Register creates a student login, linking it to an existing student
// profile when one has the same email.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Registration, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Phone != nil && strings.TrimSpace(*req.Phone) == "" {
		req.Phone = nil
	}

	if err := validation.Struct(s.validate, req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &User{
		Username: req.Username,
		Password: string(hashedPassword),
		Role:     &Role{Name: session.RoleStudent},
	}
	profile := &student.Student{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Phone:     req.Phone,
	}

	reg, err := s.repo.Register(ctx, user, profile)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRegistration(ctx, reg.Linked)

	event := events.NewEvent(events.TypeUserRegistered, strconv.Itoa(reg.UserID), reg)
	pubErr := s.publisher.Publish(ctx, event)
	s.metrics.RecordEventPublished(ctx, event.Type, pubErr)
	if pubErr != nil {
		s.logger.WarnContext(ctx, "failed to publish registration event", "user_id", reg.UserID, "error", pubErr)
	}

	return reg, nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*session.Principal, *session.Session, error) {
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, nil, err
	}

	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, nil, apperr.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, apperr.ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, user.ID, s.manager.TTL())
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}

	principal := user.Principal()
	s.metrics.RecordLogin(ctx, principal.Role)
	return principal, sess, nil
}

// Logout revokes the session. An unknown id is not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
