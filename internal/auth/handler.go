package auth

import (
	"log/slog"
	"net/http"

	"github.com/ovsidee/UniversityApp/internal/httputil"
	"github.com/ovsidee/UniversityApp/internal/session"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	manager *session.Manager
	logger  *slog.Logger
}

func NewHandler(service *Service, manager *session.Manager, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		manager: manager,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/me", h.Me)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
}

// Me reports the current principal, 401 when there is none.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := session.FromContext(r.Context())
	if principal == nil {
		httputil.RespondWithJSON(w, http.StatusUnauthorized, MeResponse{IsAuthenticated: false})
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, MeResponse{IsAuthenticated: true, User: principal})
}

// Register creates a new student account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	reg, err := h.service.Register(r.Context(), req)
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user registered",
		"user_id", reg.UserID,
		"student_id", reg.StudentID,
		"linked", reg.Linked,
	)
	httputil.RespondWithMessage(w, http.StatusCreated, "Registration successful")
}

// Login authenticates a user and sets the session cookie
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	principal, sess, err := h.service.Login(r.Context(), req)
	if err != nil {
		httputil.RespondWithAppError(w, r, h.logger, err)
		return
	}

	if err := h.manager.SetCookie(w, sess); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to sign session", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "error_internal")
		return
	}

	h.logger.InfoContext(r.Context(), "user logged in", "username", principal.Username, "role", principal.Role)
	httputil.RespondWithJSON(w, http.StatusOK, LoginResponse{Message: "Logged in", User: principal})
}

// Logout revokes the session and clears the cookie
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.manager.SessionID(r); ok {
		if err := h.service.Logout(r.Context(), id); err != nil {
			httputil.RespondWithAppError(w, r, h.logger, err)
			return
		}
	}

	h.manager.ClearCookie(w)
	httputil.RespondWithMessage(w, http.StatusOK, "Logged out")
}
