package user

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rosterhq/roster/engine/core"
)

func TestCreateUser_Validate(t *testing.T) {
	t.Run("Should accept a fully populated request", func(t *testing.T) {
		input := &CreateUser{Name: "Alice", Email: "alice@example.com", Age: 30}
		assert.NoError(t, input.Validate())
	})
	t.Run("Should accept age zero", func(t *testing.T) {
		input := &CreateUser{Name: "Newborn", Email: "n@example.com", Age: 0}
		assert.NoError(t, input.Validate())
	})
	t.Run("Should reject missing name", func(t *testing.T) {
		input := &CreateUser{Name: "  ", Email: "alice@example.com", Age: 30}
		assert.ErrorIs(t, input.Validate(), ErrInvalidInput)
	})
	t.Run("Should reject missing email", func(t *testing.T) {
		input := &CreateUser{Name: "Alice", Age: 30}
		assert.ErrorIs(t, input.Validate(), ErrInvalidInput)
	})
	t.Run("Should reject out-of-range age", func(t *testing.T) {
		input := &CreateUser{Name: "Alice", Email: "alice@example.com", Age: 200}
		assert.ErrorIs(t, input.Validate(), ErrInvalidInput)
	})
}

func TestUpdateUser_Validate(t *testing.T) {
	name := "Bob"
	email := "bob@example.com"
	age := 41

	t.Run("Should accept a partial update", func(t *testing.T) {
		input := &UpdateUser{ID: core.MustNewID(), Email: &email}
		assert.NoError(t, input.Validate())
	})
	t.Run("Should accept an empty update", func(t *testing.T) {
		input := &UpdateUser{ID: core.MustNewID()}
		assert.NoError(t, input.Validate())
	})
	t.Run("Should accept all fields at once", func(t *testing.T) {
		input := &UpdateUser{ID: core.MustNewID(), Name: &name, Email: &email, Age: &age}
		assert.NoError(t, input.Validate())
	})
	t.Run("Should reject missing id", func(t *testing.T) {
		input := &UpdateUser{Name: &name}
		assert.ErrorIs(t, input.Validate(), ErrInvalidInput)
	})
	t.Run("Should reject blank name when provided", func(t *testing.T) {
		blank := "   "
		input := &UpdateUser{ID: core.MustNewID(), Name: &blank}
		assert.ErrorIs(t, input.Validate(), ErrInvalidInput)
	})
	t.Run("Should reject negative age when provided", func(t *testing.T) {
		negative := -1
		input := &UpdateUser{ID: core.MustNewID(), Age: &negative}
		assert.ErrorIs(t, input.Validate(), ErrInvalidInput)
	})
}
