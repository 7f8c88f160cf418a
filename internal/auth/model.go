package auth

import (
	"github.com/ovsidee/UniversityApp/internal/session"

	"github.com/uptrace/bun"
)

type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID   int    `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull,unique" json:"name"`
}

// User is a login. Password holds a bcrypt hash and never leaves the server.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int    `bun:"id,pk,autoincrement" json:"id"`
	Username  string `bun:"username,notnull,unique" json:"username"`
	Password  string `bun:"password,notnull" json:"-"`
	RoleID    int    `bun:"role_id,notnull" json:"-"`
	StudentID *int   `bun:"student_id" json:"studentId"`

	Role *Role `bun:"rel:belongs-to,join:role_id=id" json:"-"`
}

var UserForeignKeys = []string{
	`("role_id") REFERENCES "roles" ("id")`,
	`("student_id") REFERENCES "students" ("id") ON DELETE SET NULL`,
}

// Principal returns the session identity of u. Role must be loaded.
func (u *User) Principal() *session.Principal {
	role := session.RoleGuest
	if u.Role != nil {
		role = u.Role.Name
	}
	return &session.Principal{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      role,
		StudentID: u.StudentID,
	}
}

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Username  string  `json:"username" validate:"required,min=3,max=50"`
	Password  string  `json:"password" validate:"required,password_policy,max=72"`
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,phone,max=30"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type MeResponse struct {
	IsAuthenticated bool               `json:"isAuthenticated"`
	User            *session.Principal `json:"user,omitempty"`
}

type LoginResponse struct {
	Message string             `json:"message"`
	User    *session.Principal `json:"user"`
}

// Registration reports what Register did.
type Registration struct {
	UserID    int  `json:"id"`
	StudentID int  `json:"studentId"`
	Linked    bool `json:"linked"`
}
