package session

import "context"

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
	RoleGuest   = "guest"
)

// Principal is the identity behind an authenticated request.
type Principal struct {
	UserID    int    `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	StudentID *int   `json:"studentId"`
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Owns reports whether studentID is the profile linked to p.
func (p *Principal) Owns(studentID int) bool {
	return p != nil && p.StudentID != nil && *p.StudentID == studentID
}

type contextKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal, or nil for an anonymous request.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(contextKey{}).(*Principal)
	return p
}
