package course

import (
	"github.com/ovsidee/UniversityApp/internal/enrollment"

	"github.com/uptrace/bun"
)

type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID      int    `bun:"id,pk,autoincrement" json:"id"`
	Name    string `bun:"name,notnull,unique" json:"name"`
	Credits int    `bun:"credits,notnull" json:"credits"`
}

type Input struct {
	Name    string `json:"name" validate:"required,max=200"`
	Credits int    `json:"credits" validate:"gt=0,lte=60"`
}

// Detail is a course and its roster. Students holds []enrollment.RosterEntry
// for admins and []RosterMember for everyone else.
type Detail struct {
	Course   *Course     `json:"course"`
	Students interface{} `json:"students"`
}

// RosterMember is a roster entry without grade or contact details.
type RosterMember struct {
	StudentID int    `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func redact(entries []enrollment.RosterEntry) []RosterMember {
	members := make([]RosterMember, 0, len(entries))
	for _, e := range entries {
		members = append(members, RosterMember{
			StudentID: e.StudentID,
			FirstName: e.FirstName,
			LastName:  e.LastName,
		})
	}
	return members
}
