package uc

import (
	"context"
	"errors"
	"fmt"

	"github.com/rosterhq/roster/engine/core"
	"github.com/rosterhq/roster/engine/user"
	"github.com/rosterhq/roster/pkg/logger"
)

// CreateUser use case for creating a new user
type CreateUser struct {
	repo  user.Repository
	input *user.CreateUser
}

// NewCreateUser creates a new create user use case
func NewCreateUser(repo user.Repository, input *user.CreateUser) *CreateUser {
	return &CreateUser{
		repo:  repo,
		input: input,
	}
}

// Execute creates a new user. Uniqueness is enforced by the store; a
// duplicate email surfaces as user.ErrEmailExists from the single
// repository call.
func (uc *CreateUser) Execute(ctx context.Context) (*user.User, error) {
	log := logger.FromContext(ctx)
	if err := uc.input.Validate(); err != nil {
		return nil, err
	}
	log.Debug("Creating user", "email", uc.input.Email)
	userID, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}
	created, err := uc.repo.CreateUser(ctx, &user.User{
		ID:    userID,
		Name:  uc.input.Name,
		Email: uc.input.Email,
		Age:   uc.input.Age,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Info("User created successfully", "user_id", created.ID, "email", created.Email)
	return created, nil
}
