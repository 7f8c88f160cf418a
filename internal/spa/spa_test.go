package spa_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/ovsidee/UniversityApp/internal/logger"
	"github.com/ovsidee/UniversityApp/internal/session"
	"github.com/ovsidee/UniversityApp/internal/spa"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		path   string
		view   spa.View
		id     int
		public bool
	}{
		{"/", spa.ViewHome, 0, true},
		{"/home", spa.ViewHome, 0, true},
		{"/login", spa.ViewLogin, 0, true},
		{"/register", spa.ViewRegister, 0, true},
		{"/courses", spa.ViewCourseList, 0, true},
		{"/courses/", spa.ViewCourseList, 0, true},
		{"/students", spa.ViewStudentList, 0, false},
		{"/students/add", spa.ViewStudentAdd, 0, false},
		{"/students/view/7", spa.ViewStudentView, 7, false},
		{"/students/edit/7", spa.ViewStudentEdit, 7, false},
		{"/students/enroll/3", spa.ViewStudentEnroll, 3, false},
		{"/courses/add", spa.ViewCourseAdd, 0, false},
		{"/courses/view/5", spa.ViewCourseView, 5, false},
		{"/courses/edit/5", spa.ViewCourseEdit, 5, false},
		{"/courses/enroll/5", spa.ViewCourseEnroll, 5, false},
		{"/students/view/abc", spa.ViewNotFound, 0, false},
		{"/students/view/0", spa.ViewNotFound, 0, false},
		{"/students/view/1/extra", spa.ViewNotFound, 0, false},
		{"/nowhere", spa.ViewNotFound, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route := spa.Resolve(tt.path, nil)
			assert.Equal(t, tt.view, route.View)
			assert.Equal(t, tt.id, route.ID)
			assert.Equal(t, tt.public, route.Public)
		})
	}
}

func TestResolvePage(t *testing.T) {
	assert.Equal(t, 3, spa.Resolve("/students", url.Values{"page": {"3"}}).Page)
	assert.Equal(t, 1, spa.Resolve("/students", url.Values{"page": {"0"}}).Page)
	assert.Equal(t, 1, spa.Resolve("/students", url.Values{"page": {"-4"}}).Page)
	assert.Equal(t, 1, spa.Resolve("/students", url.Values{"page": {"x"}}).Page)
}

func newRouter(t *testing.T, principal *session.Principal) chi.Router {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("// app"), 0o644))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if principal != nil {
				req = req.WithContext(session.WithPrincipal(req.Context(), principal))
			}
			next.ServeHTTP(w, req)
		})
	})
	spa.NewHandler(dir, logger.Discard()).RegisterRoutes(r)
	return r
}

func get(r http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestServeShell(t *testing.T) {
	studentID := 2
	student := &session.Principal{UserID: 1, Username: "anna", Role: session.RoleStudent, StudentID: &studentID}

	t.Run("public path for guest", func(t *testing.T) {
		rec := get(newRouter(t, nil), "/courses")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `data-view="course-list"`)
		assert.Contains(t, rec.Body.String(), "<title>University App</title>")
	})

	t.Run("private path for guest redirects", func(t *testing.T) {
		rec := get(newRouter(t, nil), "/students/view/2")

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("private path with session", func(t *testing.T) {
		rec := get(newRouter(t, student), "/students/view/2")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `data-id="2"`)
	})

	t.Run("unknown view", func(t *testing.T) {
		rec := get(newRouter(t, student), "/nowhere", &http.Cookie{Name: spa.LangCookie, Value: "pl"})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `lang="pl"`)
		assert.Contains(t, rec.Body.String(), "Nie znaleziono strony")
	})

	t.Run("assets", func(t *testing.T) {
		rec := get(newRouter(t, nil), "/assets/app.js")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "// app", rec.Body.String())
	})
}
