package student

import (
	"log/slog"
	"net/http"

	"github.com/ovsidee/UniversityApp/internal/httputil"
	"github.com/ovsidee/UniversityApp/internal/pagination"
	"github.com/ovsidee/UniversityApp/internal/policy"
	"github.com/ovsidee/UniversityApp/internal/session"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	guard   *policy.Guard
	logger  *slog.Logger
}

func NewHandler(service Service, guard *policy.Guard, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		guard:   guard,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(policy.ListStudents))
		r.Get("/students", h.ListStudents)
		r.Get("/students/{id}", h.GetStudent)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(policy.ManageStudents))
		r.Post("/students", h.CreateStudent)
		r.Put("/students/{id}", h.UpdateStudent)
		r.Delete("/students/{id}", h.DeleteStudent)
	})
}

// ListStudents serves ?page=N, or ?all=true for admins as a plain array.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := session.FromContext(ctx)

	if r.URL.Query().Get("all") == "true" {
		if err := h.guard.Check(ctx, policy.Request{Action: policy.ManageStudents}); err != nil {
			httputil.RespondWithAppError(w, r, h.logger, err)
			return
		}

		students, err := h.service.AllStudents(ctx)
		if err != nil {
			httputil.RespondWithAppError(w, r, h.logger, err)
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, students)
		return
	}

	page, err := h.service.ListStudents(ctx, principal, pagination.ParsePage(r))
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, page)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	// Ownership is checked against the session, never the URL alone.
	if err := h.guard.Check(ctx, policy.Request{Action: policy.ViewStudent, StudentID: id}); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	profile, err := h.service.GetProfile(ctx, id)
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	created, err := h.service.CreateStudent(r.Context(), in)
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "student created", "student_id", created.ID)
	httputil.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      created.ID,
		"message": "Student created",
	})
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	var in Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	if _, err := h.service.UpdateStudent(r.Context(), id, in); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusOK, "Student updated")
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "student deleted", "student_id", id)
	httputil.RespondWithMessage(w, http.StatusOK, "Student deleted")
}
