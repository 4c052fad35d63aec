package core

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

// ID is an opaque unique identifier used across the engine.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return id == ""
}

// NewID generates a new KSUID-backed identifier.
func NewID() (ID, error) {
	kid, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}
	return ID(kid.String()), nil
}

// MustNewID generates a new identifier and panics on failure.
func MustNewID() ID {
	id, err := NewID()
	if err != nil {
		panic(err)
	}
	return id
}

// ParseID validates that raw is a well-formed identifier.
func ParseID(raw string) (ID, error) {
	if raw == "" {
		return "", fmt.Errorf("empty ID")
	}
	if _, err := ksuid.Parse(raw); err != nil {
		return "", fmt.Errorf("invalid ID format: %w", err)
	}
	return ID(raw), nil
}
