// Package i18n serves the en and pl dictionaries used by the client.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path"

	"github.com/ovsidee/UniversityApp/internal/apperr"
	"github.com/ovsidee/UniversityApp/internal/httputil"

	"github.com/go-chi/chi/v5"
)

const DefaultLanguage = "en"

// Supported lists the languages with a bundled dictionary.
var Supported = []string{"en", "pl"}

//go:embed locales/*.json
var files embed.FS

var dictionaries = mustLoad()

func mustLoad() map[string]map[string]string {
	out := make(map[string]map[string]string, len(Supported))
	for _, lang := range Supported {
		raw, err := files.ReadFile(path.Join("locales", lang+".json"))
		if err != nil {
			panic(fmt.Sprintf("i18n: missing dictionary %s: %v", lang, err))
		}
		dict := make(map[string]string)
		if err := json.Unmarshal(raw, &dict); err != nil {
			panic(fmt.Sprintf("i18n: invalid dictionary %s: %v", lang, err))
		}
		out[lang] = dict
	}
	return out
}

// Dictionary returns the key/text map for lang.
func Dictionary(lang string) (map[string]string, bool) {
	dict, ok := dictionaries[lang]
	return dict, ok
}

// Translate looks key up in lang, falling back to English and then to the key itself.
func Translate(lang, key string) string {
	if dict, ok := dictionaries[lang]; ok {
		if text, ok := dict[key]; ok {
			return text
		}
	}
	if text, ok := dictionaries[DefaultLanguage][key]; ok {
		return text
	}
	return key
}

// Normalize maps an unsupported or empty language to the default.
func Normalize(lang string) string {
	if _, ok := dictionaries[lang]; ok {
		return lang
	}
	return DefaultLanguage
}

type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/locales/{lang}", h.GetLocale)
}

func (h *Handler) GetLocale(w http.ResponseWriter, r *http.Request) {
	dict, ok := Dictionary(chi.URLParam(r, "lang"))
	if !ok {
		httputil.RespondWithAppError(w, r, h.logger, apperr.ErrNotFound)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	httputil.RespondWithJSON(w, http.StatusOK, dict)
}
