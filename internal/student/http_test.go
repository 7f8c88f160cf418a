package student_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/ovsidee/UniversityApp/internal/course"
	"github.com/ovsidee/UniversityApp/internal/enrollment"
	"github.com/ovsidee/UniversityApp/internal/logger"
	"github.com/ovsidee/UniversityApp/internal/metrics"
	"github.com/ovsidee/UniversityApp/internal/pagination"
	"github.com/ovsidee/UniversityApp/internal/policy"
	"github.com/ovsidee/UniversityApp/internal/session"
	"github.com/ovsidee/UniversityApp/internal/student"
	"github.com/ovsidee/UniversityApp/internal/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentHandler_Shared(t *testing.T) {
	database := testdb.SetupSQLite(t)
	log := logger.Discard()

	router := chi.NewRouter()
	student.NewHandler(newService(database), policy.NewGuard(log, metrics.NewMock()), log).RegisterRoutes(router)

	do := func(p *session.Principal, method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		testdb.As(p, router).ServeHTTP(w, req)
		return w
	}

	t.Run("GetStudent_OwnProfile", func(t *testing.T) {
		testdb.CleanupTables(t, database)
		ids := insertStudents(t, database, 2)
		cid := testdb.InsertCourse(t, database, course.Course{Name: "Databases", Credits: 6})
		g := 4.5
		testdb.InsertEnrollment(t, database, enrollment.Enrollment{StudentID: ids[0], CourseID: cid, Grade: &g, EnrollmentDate: "2025-10-01"})

		w := do(testdb.Student(ids[0]), http.MethodGet, "/students/"+strconv.Itoa(ids[0]), "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var profile student.Profile
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
		assert.Equal(t, ids[0], profile.Student.ID)
		require.Len(t, profile.Enrollments, 1)
		assert.Equal(t, "Databases", profile.Enrollments[0].Name)
		assert.Equal(t, 6, profile.Enrollments[0].Credits)
		require.NotNil(t, profile.Enrollments[0].Grade)
		assert.Equal(t, 4.5, *profile.Enrollments[0].Grade)
		assert.Equal(t, "2025-10-01", profile.Enrollments[0].EnrollmentDate)
	})

	t.Run("GetStudent_OtherProfileForbidden", func(t *testing.T) {
		testdb.CleanupTables(t, database)
		ids := insertStudents(t, database, 2)

		w := do(testdb.Student(ids[0]), http.MethodGet, "/students/"+strconv.Itoa(ids[1]), "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"access_denied_msg"}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "student2@example.com")

		w = do(testdb.Student(0), http.MethodGet, "/students/"+strconv.Itoa(ids[1]), "")
		assert.Equal(t, http.StatusForbidden, w.Code, "an unlinked student owns no profile")
	})

	t.Run("GetStudent_Guest", func(t *testing.T) {
		testdb.CleanupTables(t, database)
		ids := insertStudents(t, database, 1)

		w := do(nil, http.MethodGet, "/students/"+strconv.Itoa(ids[0]), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"access_denied"}`, w.Body.String())

		w = do(nil, http.MethodGet, "/students", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GetStudent_AdminUnknownID", func(t *testing.T) {
		testdb.CleanupTables(t, database)

		w := do(testdb.Admin(), http.MethodGet, "/students/404", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"404_msg"}`, w.Body.String())
	})

	t.Run("ListStudents", func(t *testing.T) {
		testdb.CleanupTables(t, database)
		ids := insertStudents(t, database, 6)

		w := do(testdb.Admin(), http.MethodGet, "/students?page=2", "")
		require.Equal(t, http.StatusOK, w.Code)
		var page pagination.Page[student.Student]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, pagination.Meta{CurrentPage: 2, TotalPages: 2}, page.Meta)
		require.Len(t, page.Data, 1)
		assert.Equal(t, ids[5], page.Data[0].ID)

		w = do(testdb.Student(ids[2]), http.MethodGet, "/students", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.Len(t, page.Data, 1)
		assert.Equal(t, ids[2], page.Data[0].ID)

		w = do(testdb.Student(0), http.MethodGet, "/students", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[],"meta":{"currentPage":1,"totalPages":1}}`, w.Body.String())
	})

	t.Run("ListStudents_All", func(t *testing.T) {
		testdb.CleanupTables(t, database)
		ids := insertStudents(t, database, 6)

		w := do(testdb.Admin(), http.MethodGet, "/students?all=true", "")
		require.Equal(t, http.StatusOK, w.Code)
		var all []student.Student
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
		assert.Len(t, all, 6)

		w = do(testdb.Student(ids[0]), http.MethodGet, "/students?all=true", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("CreateUpdateDelete", func(t *testing.T) {
		testdb.CleanupTables(t, database)

		w := do(testdb.Admin(), http.MethodPost, "/students",
			`{"first_name":"Tomasz","last_name":"Lewandowski","email":"tomasz@example.com","phone":"555-0101"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created struct {
			ID      int    `json:"id"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Student created", created.Message)
		path := "/students/" + strconv.Itoa(created.ID)

		w = do(testdb.Admin(), http.MethodPost, "/students",
			`{"first_name":"Tomek","last_name":"L","email":"tomasz@example.com"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error":"error_email_duplicate"}`, w.Body.String())

		w = do(testdb.Admin(), http.MethodPut, path,
			`{"first_name":"Tomasz","last_name":"Lewandowski","email":"bad-email"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"error_invalid_email"}`, w.Body.String())

		w = do(testdb.Admin(), http.MethodPut, path,
			`{"first_name":"Tomasz","last_name":"Lewandowski","email":"tomasz@example.com","phone":"abc"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"error_invalid_phone"}`, w.Body.String())

		w = do(testdb.Admin(), http.MethodPut, path,
			`{"first_name":"Tom","last_name":"Lewandowski","email":"tom@example.com"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Student updated"}`, w.Body.String())

		w = do(testdb.Admin(), http.MethodDelete, path, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Student deleted"}`, w.Body.String())

		w = do(testdb.Admin(), http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("StudentsCannotWrite", func(t *testing.T) {
		testdb.CleanupTables(t, database)
		ids := insertStudents(t, database, 1)
		self := testdb.Student(ids[0])
		path := "/students/" + strconv.Itoa(ids[0])

		w := do(self, http.MethodPost, "/students", `{"first_name":"A","last_name":"B","email":"ab@example.com"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = do(self, http.MethodPut, path, `{"first_name":"A","last_name":"B","email":"ab@example.com"}`)
		assert.Equal(t, http.StatusForbidden, w.Code, "not even their own profile")

		w = do(self, http.MethodDelete, path, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		testdb.CleanupTables(t, database)

		w := do(testdb.Admin(), http.MethodPost, "/students", `{"first_name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"error_invalid_request"}`, w.Body.String())
	})
}
