package patient

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used on the wire and for parsing
// date of birth and registered date.
const DateLayout = "2006-01-02"

// Patient maps to the patient table.
type Patient struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Email          string     `db:"email" json:"email"`
	Address        string     `db:"address" json:"address"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	RegisteredDate *time.Time `db:"registered_date" json:"registered_date,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// IsNew reports whether the record has not been persisted yet.
func (p *Patient) IsNew() bool {
	return p.ID == uuid.Nil
}

func (p *Patient) clone() *Patient {
	c := *p
	if p.DateOfBirth != nil {
		dob := *p.DateOfBirth
		c.DateOfBirth = &dob
	}
	if p.RegisteredDate != nil {
		reg := *p.RegisteredDate
		c.RegisteredDate = &reg
	}
	return &c
}
