package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFS(t *testing.T) {
	t.Run("Should embed versioned migration files", func(t *testing.T) {
		entries, err := migrationsFS.ReadDir("migrations")
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		for _, entry := range entries {
			assert.Regexp(t, `^\d{5}_.+\.sql$`, entry.Name())
		}
	})
	t.Run("Should include the users table migration", func(t *testing.T) {
		data, err := migrationsFS.ReadFile("migrations/00001_create_users.sql")
		require.NoError(t, err)
		content := string(data)
		assert.Contains(t, content, "-- +goose Up")
		assert.Contains(t, content, "-- +goose Down")
		assert.Contains(t, content, "CREATE TABLE users")
		assert.Contains(t, content, "CONSTRAINT users_email_key UNIQUE (email)")
	})
}
