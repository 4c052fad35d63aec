package uc

import (
	"github.com/rosterhq/roster/engine/core"
	"github.com/rosterhq/roster/engine/user"
)

// Factory hands out use cases bound to a single repository instance
type Factory struct {
	repo user.Repository
}

// NewFactory creates a new use case factory
func NewFactory(repo user.Repository) *Factory {
	return &Factory{repo: repo}
}

func (f *Factory) CreateUser(input *user.CreateUser) *CreateUser {
	return NewCreateUser(f.repo, input)
}

func (f *Factory) GetUser(userID core.ID) *GetUser {
	return NewGetUser(f.repo, userID)
}

func (f *Factory) UpdateUser(input *user.UpdateUser) *UpdateUser {
	return NewUpdateUser(f.repo, input)
}

func (f *Factory) DeleteUser(userID core.ID) *DeleteUser {
	return NewDeleteUser(f.repo, userID)
}

func (f *Factory) ListUsers() *ListUsers {
	return NewListUsers(f.repo)
}
