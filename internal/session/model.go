package session

import (
	"time"

	"github.com/uptrace/bun"
)

// Session is the server-side half of a login. Deleting the row revokes the cookie.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ss"`

	ID        string    `bun:"id,pk"`
	UserID    int       `bun:"user_id,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

var ForeignKeys = []string{
	`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
}
