package spa

import (
	"bytes"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/ovsidee/UniversityApp/internal/i18n"
	"github.com/ovsidee/UniversityApp/internal/session"

	"github.com/go-chi/chi/v5"
)

// LangCookie holds the language picked in the client.
const LangCookie = "lang"

//go:embed shell.html
var shellHTML string

var shell = template.Must(template.New("shell").Parse(shellHTML))

type shellData struct {
	Lang          string
	Title         string
	View          View
	ID            int
	Page          int
	NotFoundTitle string
}

type Handler struct {
	staticDir string
	logger    *slog.Logger
}

func NewHandler(staticDir string, logger *slog.Logger) *Handler {
	return &Handler{staticDir: staticDir, logger: logger}
}

// RegisterRoutes must run after the API and health routes so the catch-all
// only sees client paths.
func (h *Handler) RegisterRoutes(r chi.Router) {
	assets := http.StripPrefix("/assets/", http.FileServer(http.Dir(filepath.Join(h.staticDir, "assets"))))
	r.Handle("/assets/*", assets)
	r.Get("/*", h.ServeShell)
}

func (h *Handler) ServeShell(w http.ResponseWriter, r *http.Request) {
	route := Resolve(r.URL.Path, r.URL.Query())

	if !route.Public && session.FromContext(r.Context()) == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	lang := i18n.DefaultLanguage
	if c, err := r.Cookie(LangCookie); err == nil {
		lang = i18n.Normalize(c.Value)
	}

	data := shellData{
		Lang:          lang,
		Title:         i18n.Translate(lang, "brand"),
		View:          route.View,
		ID:            route.ID,
		Page:          route.Page,
		NotFoundTitle: i18n.Translate(lang, "404_title"),
	}

	var buf bytes.Buffer
	if err := shell.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render shell", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if route.View == ViewNotFound {
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
