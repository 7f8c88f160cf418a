package enrollment

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ovsidee/UniversityApp/internal/apperr"
	"github.com/ovsidee/UniversityApp/internal/httputil"
	"github.com/ovsidee/UniversityApp/internal/policy"

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

// RegisterRoutes mounts enrollment management on both the student and the course side.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(policy.ManageEnrollments))

		r.Post("/students/{id}/enroll", h.EnrollStudent)
		r.Delete("/students/{id}/enroll/{course_id}", h.UnenrollStudent)

		r.Post("/courses/{id}/enroll", h.EnrollInCourse)
		r.Delete("/courses/{id}/remove/{student_id}", h.RemoveFromCourse)
		r.Put("/courses/{id}/grade/{student_id}", h.UpdateGrade)
	})
}

func (h *Handler) EnrollStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	var req EnrollRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	req.StudentID = studentID

	h.enroll(w, r, req)
}

func (h *Handler) EnrollInCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	var req EnrollRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	req.CourseID = courseID

	h.enroll(w, r, req)
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request, req EnrollRequest) {
	created, err := h.service.Enroll(r.Context(), req)
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "student enrolled",
		"student_id", created.StudentID,
		"course_id", created.CourseID,
	)
	httputil.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Enrolled successfully",
		"enrollment": created,
	})
}

func (h *Handler) UnenrollStudent(w http.ResponseWriter, r *http.Request) {
	h.unenroll(w, r, "id", "course_id")
}

func (h *Handler) RemoveFromCourse(w http.ResponseWriter, r *http.Request) {
	h.unenroll(w, r, "student_id", "id")
}

func (h *Handler) unenroll(w http.ResponseWriter, r *http.Request, studentParam, courseParam string) {
	studentID, err := httputil.IDParam(r, studentParam)
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	courseID, err := httputil.IDParam(r, courseParam)
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	if err := h.service.Unenroll(r.Context(), studentID, courseID); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusOK, "Enrollment removed")
}

// UpdateGrade expects {"grade": <number>} or {"grade": null}. A body without
// the key is rejected so a typo cannot silently clear a grade.
func (h *Handler) UpdateGrade(w http.ResponseWriter, r *http.Request) {
	courseID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	studentID, err := httputil.IDParam(r, "student_id")
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	var body map[string]json.RawMessage
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	raw, ok := body["grade"]
	if !ok {
		httputil.RespondWithAppError(w, r, h.logger, apperr.ErrInvalidGrade)
		return
	}

	var grade *float64
	if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		var value float64
		if err := json.Unmarshal(raw, &value); err != nil {
			httputil.RespondWithAppError(w, r, h.logger, apperr.Wrap(apperr.ErrInvalidGrade, err))
			return
		}
		grade = &value
	}

	if err := h.service.UpdateGrade(r.Context(), studentID, courseID, grade); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}
	httputil.RespondWithMessage(w, http.StatusOK, "Grade updated")
}
