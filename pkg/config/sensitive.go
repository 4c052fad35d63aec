package config

import "encoding/json"

// redactedPlaceholder replaces secret values in logs, errors, and JSON output.
const redactedPlaceholder = "[REDACTED]"

// SensitiveString holds a secret configuration value. It satisfies
// fmt.Stringer and json.Marshaler with redacted output so secrets never
// leak through logging or serialization; use Value() to read the secret.
type SensitiveString string

// String returns a redacted placeholder for non-empty values.
func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return redactedPlaceholder
}

// Value returns the underlying secret.
func (s SensitiveString) Value() string {
	return string(s)
}

// IsEmpty reports whether the secret is unset.
func (s SensitiveString) IsEmpty() bool {
	return s == ""
}

// MarshalJSON writes the redacted form, never the secret itself.
func (s SensitiveString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON stores the raw value so configuration files can supply secrets.
func (s *SensitiveString) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SensitiveString(raw)
	return nil
}
