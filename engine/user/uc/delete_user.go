package uc

import (
	"context"
	"errors"
	"fmt"

	"github.com/rosterhq/roster/engine/core"
	"github.com/rosterhq/roster/engine/user"
	"github.com/rosterhq/roster/pkg/logger"
)

// DeleteUser use case for deleting a user
type DeleteUser struct {
	repo   user.Repository
	userID core.ID
}

// NewDeleteUser creates a new delete user use case
func NewDeleteUser(repo user.Repository, userID core.ID) *DeleteUser {
	return &DeleteUser{
		repo:   repo,
		userID: userID,
	}
}

// Execute deletes a user. Deletion is not idempotent: a second call with
// the same ID fails with user.ErrUserNotFound.
func (uc *DeleteUser) Execute(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Debug("Deleting user", "user_id", uc.userID)
	if err := uc.repo.DeleteUser(ctx, uc.userID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user %s: %w", uc.userID, err)
	}
	log.Info("User deleted successfully", "user_id", uc.userID)
	return nil
}
