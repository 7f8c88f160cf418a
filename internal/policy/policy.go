// Package policy decides what a principal may do. Route guards and handlers
// share the same Decide function so every check follows one table.
package policy

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ovsidee/UniversityApp/internal/apperr"
	"github.com/ovsidee/UniversityApp/internal/httputil"
	"github.com/ovsidee/UniversityApp/internal/metrics"
	"github.com/ovsidee/UniversityApp/internal/session"
)

type Action int

const (
	ListCourses Action = iota
	ViewCourse
	ManageCourses
	ListStudents
	ViewStudent
	ManageStudents
	ManageEnrollments
	ViewGrades
	ViewSession
)

func (a Action) String() string {
	switch a {
	case ListCourses:
		return "list_courses"
	case ViewCourse:
		return "view_course"
	case ManageCourses:
		return "manage_courses"
	case ListStudents:
		return "list_students"
	case ViewStudent:
		return "view_student"
	case ManageStudents:
		return "manage_students"
	case ManageEnrollments:
		return "manage_enrollments"
	case ViewGrades:
		return "view_grades"
	case ViewSession:
		return "view_session"
	default:
		return "unknown"
	}
}

type Reason string

const (
	ReasonAllowed     Reason = ""
	ReasonAnonymous   Reason = "anonymous"
	ReasonRole        Reason = "role"
	ReasonNotOwner    Reason = "not_owner"
	ReasonUnknownRole Reason = "unknown_role"
)

// Request is an action plus the student profile it targets, when it has one.
type Request struct {
	Action    Action
	StudentID int
}

type Decision struct {
	Allowed bool
	Reason  Reason
}

// Err converts a denial into the error clients see.
func (d Decision) Err() error {
	switch d.Reason {
	case ReasonAllowed:
		return nil
	case ReasonAnonymous:
		return apperr.ErrUnauthenticated
	case ReasonNotOwner:
		return apperr.ErrNotOwner
	default:
		return apperr.ErrForbidden
	}
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason Reason) Decision { return Decision{Reason: reason} }

// Decide applies the role table. A nil principal is a guest.
func Decide(p *session.Principal, req Request) Decision {
	if p == nil || p.Role == session.RoleGuest {
		if req.Action == ListCourses {
			return allow()
		}
		return deny(ReasonAnonymous)
	}

	switch p.Role {
	case session.RoleAdmin:
		return allow()
	case session.RoleStudent:
		switch req.Action {
		case ListCourses, ViewCourse, ListStudents, ViewSession:
			return allow()
		case ViewStudent:
			if p.Owns(req.StudentID) {
				return allow()
			}
			return deny(ReasonNotOwner)
		default:
			return deny(ReasonRole)
		}
	default:
		return deny(ReasonUnknownRole)
	}
}

// CanViewGrades reports whether p sees grades and contact details on rosters.
func CanViewGrades(p *session.Principal) bool {
	return Decide(p, Request{Action: ViewGrades}).Allowed
}

// Guard applies decisions to requests and records denials.
type Guard struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewGuard(logger *slog.Logger, m *metrics.Metrics) *Guard {
	return &Guard{
		logger:  logger,
		metrics: m,
	}
}

// Check decides req for the principal in ctx.
func (g *Guard) Check(ctx context.Context, req Request) error {
	p := session.FromContext(ctx)
	decision := Decide(p, req)
	if decision.Allowed {
		return nil
	}

	g.metrics.RecordAccessDenied(ctx, req.Action.String(), string(decision.Reason))
	return decision.Err()
}

// Require is route middleware for actions that do not target a single profile.
func (g *Guard) Require(action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Check(r.Context(), Request{Action: action}); err != nil {
				httputil.RespondWithAppError(w, r, g.logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
