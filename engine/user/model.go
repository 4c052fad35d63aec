package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/rosterhq/roster/engine/core"
)

// User represents a directory member
type User struct {
	ID        core.ID   `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Email     string    `db:"email"      json:"email"`
	Age       int       `db:"age"        json:"age"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreateUser carries everything needed to create a user except the
// identifier, which is generated before insert.
type CreateUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// UpdateUser is a partial update request. Nil fields are left unchanged.
type UpdateUser struct {
	ID    core.ID `json:"id"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Age   *int    `json:"age,omitempty"`
}

const maxAge = 150

// Validate checks the construction request for required fields.
func (c *CreateUser) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if c.Age < 0 || c.Age > maxAge {
		return fmt.Errorf("%w: age must be between 0 and %d", ErrInvalidInput, maxAge)
	}
	return nil
}

// Validate checks the update request. Absent fields are valid; present
// fields must carry usable values.
func (u *UpdateUser) Validate() error {
	if u.ID.IsZero() {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if u.Email != nil && strings.TrimSpace(*u.Email) == "" {
		return fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
	}
	if u.Age != nil && (*u.Age < 0 || *u.Age > maxAge) {
		return fmt.Errorf("%w: age must be between 0 and %d", ErrInvalidInput, maxAge)
	}
	return nil
}
