package config

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensitiveString_String(t *testing.T) {
	t.Run("Should redact non-empty values", func(t *testing.T) {
		s := SensitiveString("secret-password-123")
		assert.Equal(t, "[REDACTED]", s.String())
		assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	})

	t.Run("Should return empty string for empty values", func(t *testing.T) {
		s := SensitiveString("")
		assert.Equal(t, "", s.String())
		assert.True(t, s.IsEmpty())
	})
}

func TestSensitiveString_Value(t *testing.T) {
	t.Run("Should return the actual secret", func(t *testing.T) {
		secret := "my-db-password"
		s := SensitiveString(secret)
		assert.Equal(t, secret, s.Value())
		assert.False(t, s.IsEmpty())
	})
}

func TestSensitiveString_JSON(t *testing.T) {
	t.Run("Should marshal as redacted string", func(t *testing.T) {
		payload := struct {
			Password SensitiveString `json:"password"`
			Name     string          `json:"name"`
		}{
			Password: SensitiveString("secret-key-123"),
			Name:     "roster",
		}

		data, err := json.Marshal(payload)
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(data, &result))
		assert.Equal(t, "[REDACTED]", result["password"])
		assert.Equal(t, "roster", result["name"])
	})

	t.Run("Should marshal empty value as empty string", func(t *testing.T) {
		data, err := json.Marshal(SensitiveString(""))
		require.NoError(t, err)
		assert.Equal(t, `""`, string(data))
	})

	t.Run("Should unmarshal raw values", func(t *testing.T) {
		var s SensitiveString
		require.NoError(t, json.Unmarshal([]byte(`"secret-value"`), &s))
		assert.Equal(t, "secret-value", s.Value())
	})
}
