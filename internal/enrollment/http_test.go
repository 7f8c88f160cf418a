package enrollment_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/ovsidee/UniversityApp/internal/course"
	"github.com/ovsidee/UniversityApp/internal/enrollment"
	"github.com/ovsidee/UniversityApp/internal/events"
	"github.com/ovsidee/UniversityApp/internal/logger"
	"github.com/ovsidee/UniversityApp/internal/metrics"
	"github.com/ovsidee/UniversityApp/internal/policy"
	"github.com/ovsidee/UniversityApp/internal/session"
	"github.com/ovsidee/UniversityApp/internal/student"
	"github.com/ovsidee/UniversityApp/internal/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentHandler_Shared(t *testing.T) {
	database := testdb.SetupSQLite(t)
	log := logger.Discard()
	m := metrics.NewMock()

	svc := enrollment.NewService(enrollment.NewRepository(database, m), events.Noop{}, m, log)
	router := chi.NewRouter()
	enrollment.NewHandler(svc, policy.NewGuard(log, m), log).RegisterRoutes(router)

	do := func(p *session.Principal, method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		testdb.As(p, router).ServeHTTP(w, req)
		return w
	}

	setup := func(t *testing.T) (int, int) {
		testdb.CleanupTables(t, database)
		sid := testdb.InsertStudent(t, database, student.Student{FirstName: "Anna", LastName: "Nowak", Email: "anna@example.com"})
		cid := testdb.InsertCourse(t, database, course.Course{Name: "Computer Networks", Credits: 4})
		return sid, cid
	}

	t.Run("EnrollFromStudentSide", func(t *testing.T) {
		sid, cid := setup(t)
		path := "/students/" + strconv.Itoa(sid) + "/enroll"

		w := do(testdb.Admin(), http.MethodPost, path, `{"course_id":`+strconv.Itoa(cid)+`}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Message    string                `json:"message"`
			Enrollment enrollment.Enrollment `json:"enrollment"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Enrolled successfully", resp.Message)
		assert.Equal(t, sid, resp.Enrollment.StudentID)
		assert.Equal(t, cid, resp.Enrollment.CourseID)

		w = do(testdb.Admin(), http.MethodPost, path, `{"course_id":`+strconv.Itoa(cid)+`}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error":"error_enroll_exists"}`, w.Body.String())
	})

	t.Run("EnrollFromCourseSide", func(t *testing.T) {
		sid, cid := setup(t)

		w := do(testdb.Admin(), http.MethodPost, "/courses/"+strconv.Itoa(cid)+"/enroll",
			`{"student_id":`+strconv.Itoa(sid)+`,"grade":4.5,"enrollment_date":"2025-03-01"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = do(testdb.Admin(), http.MethodDelete, "/courses/"+strconv.Itoa(cid)+"/remove/"+strconv.Itoa(sid), "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Enrollment removed"}`, w.Body.String())

		w = do(testdb.Admin(), http.MethodDelete, "/courses/"+strconv.Itoa(cid)+"/remove/"+strconv.Itoa(sid), "")
		assert.Equal(t, http.StatusOK, w.Code, "removing twice still succeeds")
	})

	t.Run("UnenrollMissingPair", func(t *testing.T) {
		sid, cid := setup(t)

		w := do(testdb.Admin(), http.MethodDelete, "/students/"+strconv.Itoa(sid)+"/enroll/"+strconv.Itoa(cid), "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("UpdateGrade", func(t *testing.T) {
		sid, cid := setup(t)
		testdb.InsertEnrollment(t, database, enrollment.Enrollment{StudentID: sid, CourseID: cid})
		path := "/courses/" + strconv.Itoa(cid) + "/grade/" + strconv.Itoa(sid)

		tests := []struct {
			name   string
			body   string
			status int
			want   string
		}{
			{"lower bound", `{"grade":2}`, http.StatusOK, `{"message":"Grade updated"}`},
			{"upper bound", `{"grade":5.0}`, http.StatusOK, `{"message":"Grade updated"}`},
			{"half step", `{"grade":3.5}`, http.StatusOK, `{"message":"Grade updated"}`},
			{"clear", `{"grade":null}`, http.StatusOK, `{"message":"Grade updated"}`},
			{"too high", `{"grade":5.5}`, http.StatusBadRequest, `{"error":"error_grade_range"}`},
			{"too low", `{"grade":1}`, http.StatusBadRequest, `{"error":"error_grade_range"}`},
			{"off step", `{"grade":4.2}`, http.StatusBadRequest, `{"error":"error_grade_range"}`},
			{"not a number", `{"grade":"A"}`, http.StatusBadRequest, `{"error":"error_grade_range"}`},
			{"missing key", `{}`, http.StatusBadRequest, `{"error":"error_grade_range"}`},
			{"malformed", `{"grade":`, http.StatusBadRequest, `{"error":"error_invalid_request"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := do(testdb.Admin(), http.MethodPut, path, tt.body)
				assert.Equal(t, tt.status, w.Code)
				assert.JSONEq(t, tt.want, w.Body.String())
			})
		}
	})

	t.Run("UpdateGrade_NotEnrolled", func(t *testing.T) {
		sid, cid := setup(t)

		w := do(testdb.Admin(), http.MethodPut, "/courses/"+strconv.Itoa(cid)+"/grade/"+strconv.Itoa(sid), `{"grade":4}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"404_msg"}`, w.Body.String())
	})

	t.Run("OnlyAdminsManageEnrollments", func(t *testing.T) {
		sid, cid := setup(t)
		body := `{"course_id":` + strconv.Itoa(cid) + `}`
		path := "/students/" + strconv.Itoa(sid) + "/enroll"

		w := do(testdb.Student(sid), http.MethodPost, path, body)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"access_denied"}`, w.Body.String())

		w = do(nil, http.MethodPost, path, body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = do(testdb.Student(sid), http.MethodPut, "/courses/"+strconv.Itoa(cid)+"/grade/"+strconv.Itoa(sid), `{"grade":5}`)
		assert.Equal(t, http.StatusForbidden, w.Code, "students never grade themselves")
	})

	t.Run("BadIDs", func(t *testing.T) {
		setup(t)

		w := do(testdb.Admin(), http.MethodPost, "/students/abc/enroll", `{"course_id":1}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
