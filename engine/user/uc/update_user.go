package uc

import (
	"context"
	"errors"
	"fmt"

	"github.com/rosterhq/roster/engine/user"
	"github.com/rosterhq/roster/pkg/logger"
)

// UpdateUser use case for partially updating a user
type UpdateUser struct {
	repo  user.Repository
	input *user.UpdateUser
}

// NewUpdateUser creates a new update user use case
func NewUpdateUser(repo user.Repository, input *user.UpdateUser) *UpdateUser {
	return &UpdateUser{
		repo:  repo,
		input: input,
	}
}

// Execute applies the partial update. The merge with the existing row
// happens inside the repository's single statement, so an unknown ID
// fails with user.ErrUserNotFound without creating anything.
func (uc *UpdateUser) Execute(ctx context.Context) (*user.User, error) {
	log := logger.FromContext(ctx)
	if err := uc.input.Validate(); err != nil {
		return nil, err
	}
	log.Debug("Updating user", "user_id", uc.input.ID)
	updated, err := uc.repo.UpdateUser(ctx, uc.input)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) || errors.Is(err, user.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user %s: %w", uc.input.ID, err)
	}
	log.Info("User updated successfully", "user_id", updated.ID)
	return updated, nil
}
