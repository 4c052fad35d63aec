package uc

import (
	"context"
	"errors"
	"fmt"

	"github.com/rosterhq/roster/engine/core"
	"github.com/rosterhq/roster/engine/user"
)

// GetUser use case for retrieving a user by ID
type GetUser struct {
	repo   user.Repository
	userID core.ID
}

// NewGetUser creates a new get user use case
func NewGetUser(repo user.Repository, userID core.ID) *GetUser {
	return &GetUser{
		repo:   repo,
		userID: userID,
	}
}

// Execute retrieves a user by ID
func (uc *GetUser) Execute(ctx context.Context) (*user.User, error) {
	found, err := uc.repo.GetUser(ctx, uc.userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user %s: %w", uc.userID, err)
	}
	return found, nil
}
