package uc

import (
	"context"
	"fmt"

	"github.com/rosterhq/roster/engine/user"
)

// ListUsers use case for listing all users
type ListUsers struct {
	repo user.Repository
}

// NewListUsers creates a new list users use case
func NewListUsers(repo user.Repository) *ListUsers {
	return &ListUsers{repo: repo}
}

// Execute retrieves all users, newest first
func (uc *ListUsers) Execute(ctx context.Context) ([]*user.User, error) {
	users, err := uc.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
