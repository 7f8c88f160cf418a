package course

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
	r.With(h.guard.Require(policy.ListCourses)).Get("/courses", h.ListCourses)
	r.With(h.guard.Require(policy.ViewCourse)).Get("/courses/{id}", h.GetCourse)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(policy.ManageCourses))
		r.Post("/courses", h.CreateCourse)
		r.Put("/courses/{id}", h.UpdateCourse)
		r.Delete("/courses/{id}", h.DeleteCourse)
	})
}

// ListCourses serves ?page=N, or ?all=true as a plain array ordered by name.
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("all") == "true" {
		courses, err := h.service.AllCourses(r.Context())
		if err != nil {
			httputil.RespondWithAppError(w, r, h.logger, err)
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, courses)
		return
	}

	page, err := h.service.ListCourses(r.Context(), pagination.ParsePage(r))
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, page)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.GetDetail(r.Context(), session.FromContext(r.Context()), id)
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	created, err := h.service.CreateCourse(r.Context(), in)
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "course created", "course_id", created.ID, "name", created.Name)
	httputil.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      created.ID,
		"message": "Course created",
	})
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
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

	if _, err := h.service.UpdateCourse(r.Context(), id, in); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusOK, "Course updated")
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteCourse(r.Context(), id); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "course deleted", "course_id", id)
	httputil.RespondWithMessage(w, http.StatusOK, "Course deleted")
}
