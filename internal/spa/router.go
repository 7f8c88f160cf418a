// Package spa resolves client routes and serves the single-page shell.
package spa

import (
	"net/url"
	"strconv"
	"strings"
)

type View string

const (
	ViewHome          View = "home"
	ViewLogin         View = "login"
	ViewRegister      View = "register"
	ViewStudentList   View = "student-list"
	ViewStudentAdd    View = "student-add"
	ViewStudentView   View = "student-view"
	ViewStudentEdit   View = "student-edit"
	ViewStudentEnroll View = "student-enroll"
	ViewCourseList    View = "course-list"
	ViewCourseAdd     View = "course-add"
	ViewCourseView    View = "course-view"
	ViewCourseEdit    View = "course-edit"
	ViewCourseEnroll  View = "course-enroll"
	ViewNotFound      View = "not-found"
)

// publicPaths are reachable without a session. Anything else sends an
// anonymous visitor to /login; the API still enforces access on its own.
var publicPaths = map[string]bool{
	"/":         true,
	"/home":     true,
	"/login":    true,
	"/register": true,
	"/courses":  true,
}

type pattern struct {
	segments []string
	view     View
}

// routes are tried in order, most specific first.
var routes = compile([]struct {
	path string
	view View
}{
	{"/students/view/:id", ViewStudentView},
	{"/students/edit/:id", ViewStudentEdit},
	{"/students/enroll/:id", ViewStudentEnroll},
	{"/courses/view/:id", ViewCourseView},
	{"/courses/edit/:id", ViewCourseEdit},
	{"/courses/enroll/:id", ViewCourseEnroll},
	{"/students/add", ViewStudentAdd},
	{"/courses/add", ViewCourseAdd},
	{"/students", ViewStudentList},
	{"/courses", ViewCourseList},
	{"/register", ViewRegister},
	{"/login", ViewLogin},
	{"/home", ViewHome},
	{"/", ViewHome},
})

func compile(table []struct {
	path string
	view View
}) []pattern {
	out := make([]pattern, 0, len(table))
	for _, r := range table {
		out = append(out, pattern{segments: split(r.path), view: r.view})
	}
	return out
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Route is the outcome of resolving a client URL.
type Route struct {
	View   View
	ID     int
	Page   int
	Public bool
}

// Resolve maps a path and its query to a view. Unknown paths and ids that
// are not positive integers resolve to ViewNotFound.
func Resolve(path string, query url.Values) Route {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}

	route := Route{
		View:   ViewNotFound,
		Page:   pageOf(query),
		Public: publicPaths[path],
	}

	segments := split(path)
	for _, p := range routes {
		id, ok := match(p.segments, segments)
		if ok {
			route.View = p.view
			route.ID = id
			return route
		}
	}
	return route
}

func match(pattern, segments []string) (int, bool) {
	if len(pattern) != len(segments) {
		return 0, false
	}

	id := 0
	for i, seg := range pattern {
		if seg == ":id" {
			n, err := strconv.Atoi(segments[i])
			if err != nil || n <= 0 {
				return 0, false
			}
			id = n
			continue
		}
		if seg != segments[i] {
			return 0, false
		}
	}
	return id, true
}

func pageOf(query url.Values) int {
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
