package uc_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/roster/engine/core"
	"github.com/rosterhq/roster/engine/user"
	"github.com/rosterhq/roster/engine/user/uc"
	"github.com/rosterhq/roster/pkg/logger"
)

// fakeRepo is an in-memory implementation of the storage port with the
// same error contract as the Postgres adapter.
type fakeRepo struct {
	mu    sync.Mutex
	users map[core.ID]*user.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[core.ID]*user.User)}
}

func (f *fakeRepo) CreateUser(_ context.Context, u *user.User) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, user.ErrEmailExists
		}
	}
	now := time.Now().UTC()
	stored := *u
	stored.CreatedAt = now
	stored.UpdatedAt = now
	f.users[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeRepo) GetUser(_ context.Context, id core.ID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeRepo) UpdateUser(_ context.Context, input *user.UpdateUser) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[input.ID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	if input.Email != nil {
		for id, existing := range f.users {
			if id != input.ID && existing.Email == *input.Email {
				return nil, user.ErrEmailExists
			}
		}
		stored.Email = *input.Email
	}
	if input.Name != nil {
		stored.Name = *input.Name
	}
	if input.Age != nil {
		stored.Age = *input.Age
	}
	stored.UpdatedAt = time.Now().UTC()
	copied := *stored
	return &copied, nil
}

func (f *fakeRepo) DeleteUser(_ context.Context, id core.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeRepo) ListUsers(_ context.Context) ([]*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]*user.User, 0, len(f.users))
	for _, stored := range f.users {
		copied := *stored
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (f *fakeRepo) WithTx(pgx.Tx) user.Repository {
	return f
}

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func testCtx() context.Context {
	return logger.ContextWithLogger(context.Background(), logger.NewForTests())
}

func TestCreateUser_Execute(t *testing.T) {
	t.Run("Should create user and round-trip through get", func(t *testing.T) {
		repo := newFakeRepo()
		factory := uc.NewFactory(repo)
		ctx := testCtx()

		created, err := factory.CreateUser(&user.CreateUser{
			Name:  "Alice",
			Email: "alice@example.com",
			Age:   30,
		}).Execute(ctx)
		require.NoError(t, err)
		require.False(t, created.ID.IsZero())

		fetched, err := factory.GetUser(created.ID).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, created.ID, fetched.ID)
		assert.Equal(t, "Alice", fetched.Name)
		assert.Equal(t, "alice@example.com", fetched.Email)
		assert.Equal(t, 30, fetched.Age)
	})
	t.Run("Should assign distinct ids to distinct users", func(t *testing.T) {
		repo := newFakeRepo()
		factory := uc.NewFactory(repo)
		ctx := testCtx()

		first, err := factory.CreateUser(&user.CreateUser{Name: "A", Email: "a@example.com", Age: 1}).Execute(ctx)
		require.NoError(t, err)
		second, err := factory.CreateUser(&user.CreateUser{Name: "B", Email: "b@example.com", Age: 2}).Execute(ctx)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})
	t.Run("Should reject invalid input before any port call", func(t *testing.T) {
		repo := newFakeRepo()
		factory := uc.NewFactory(repo)

		created, err := factory.CreateUser(&user.CreateUser{Name: "", Email: "x@example.com", Age: 30}).Execute(testCtx())

		assert.Nil(t, created)
		assert.ErrorIs(t, err, user.ErrInvalidInput)
		assert.Zero(t, repo.count())
	})
	t.Run("Should surface duplicate email as conflict", func(t *testing.T) {
		repo := newFakeRepo()
		factory := uc.NewFactory(repo)
		ctx := testCtx()

		_, err := factory.CreateUser(&user.CreateUser{Name: "Alice", Email: "same@example.com", Age: 30}).Execute(ctx)
		require.NoError(t, err)
		created, err := factory.CreateUser(&user.CreateUser{Name: "Bob", Email: "same@example.com", Age: 41}).Execute(ctx)

		assert.Nil(t, created)
		assert.ErrorIs(t, err, user.ErrEmailExists)
	})
}

func TestGetUser_Execute(t *testing.T) {
	t.Run("Should fail with not found for missing id", func(t *testing.T) {
		factory := uc.NewFactory(newFakeRepo())

		fetched, err := factory.GetUser(core.MustNewID()).Execute(testCtx())

		assert.Nil(t, fetched)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
		assert.NotErrorIs(t, err, user.ErrStoreFailure)
	})
}

func TestUpdateUser_Execute(t *testing.T) {
	t.Run("Should apply partial update and keep other fields", func(t *testing.T) {
		repo := newFakeRepo()
		factory := uc.NewFactory(repo)
		ctx := testCtx()

		created, err := factory.CreateUser(&user.CreateUser{Name: "Alice", Email: "alice@example.com", Age: 30}).Execute(ctx)
		require.NoError(t, err)

		newEmail := "alice@new.example.com"
		updated, err := factory.UpdateUser(&user.UpdateUser{ID: created.ID, Email: &newEmail}).Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, newEmail, updated.Email)
		assert.Equal(t, "Alice", updated.Name)
		assert.Equal(t, 30, updated.Age)
	})
	t.Run("Should fail with not found and never create a row", func(t *testing.T) {
		repo := newFakeRepo()
		factory := uc.NewFactory(repo)
		name := "Ghost"

		updated, err := factory.UpdateUser(&user.UpdateUser{ID: core.MustNewID(), Name: &name}).Execute(testCtx())

		assert.Nil(t, updated)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
		assert.Zero(t, repo.count())
	})
	t.Run("Should reject update without id", func(t *testing.T) {
		repo := newFakeRepo()
		factory := uc.NewFactory(repo)
		name := "Nameless"

		updated, err := factory.UpdateUser(&user.UpdateUser{Name: &name}).Execute(testCtx())

		assert.Nil(t, updated)
		assert.ErrorIs(t, err, user.ErrInvalidInput)
	})
	t.Run("Should surface email conflict from the store", func(t *testing.T) {
		repo := newFakeRepo()
		factory := uc.NewFactory(repo)
		ctx := testCtx()

		_, err := factory.CreateUser(&user.CreateUser{Name: "Alice", Email: "alice@example.com", Age: 30}).Execute(ctx)
		require.NoError(t, err)
		bob, err := factory.CreateUser(&user.CreateUser{Name: "Bob", Email: "bob@example.com", Age: 41}).Execute(ctx)
		require.NoError(t, err)

		taken := "alice@example.com"
		updated, err := factory.UpdateUser(&user.UpdateUser{ID: bob.ID, Email: &taken}).Execute(ctx)

		assert.Nil(t, updated)
		assert.ErrorIs(t, err, user.ErrEmailExists)
	})
}

func TestDeleteUser_Execute(t *testing.T) {
	t.Run("Should delete user so a following get fails not found", func(t *testing.T) {
		repo := newFakeRepo()
		factory := uc.NewFactory(repo)
		ctx := testCtx()

		created, err := factory.CreateUser(&user.CreateUser{Name: "Alice", Email: "alice@example.com", Age: 30}).Execute(ctx)
		require.NoError(t, err)

		require.NoError(t, factory.DeleteUser(created.ID).Execute(ctx))

		fetched, err := factory.GetUser(created.ID).Execute(ctx)
		assert.Nil(t, fetched)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
	t.Run("Should fail not found on second delete", func(t *testing.T) {
		repo := newFakeRepo()
		factory := uc.NewFactory(repo)
		ctx := testCtx()

		created, err := factory.CreateUser(&user.CreateUser{Name: "Alice", Email: "alice@example.com", Age: 30}).Execute(ctx)
		require.NoError(t, err)

		require.NoError(t, factory.DeleteUser(created.ID).Execute(ctx))
		err = factory.DeleteUser(created.ID).Execute(ctx)

		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestListUsers_Execute(t *testing.T) {
	t.Run("Should return every stored user", func(t *testing.T) {
		repo := newFakeRepo()
		factory := uc.NewFactory(repo)
		ctx := testCtx()

		_, err := factory.CreateUser(&user.CreateUser{Name: "A", Email: "a@example.com", Age: 1}).Execute(ctx)
		require.NoError(t, err)
		_, err = factory.CreateUser(&user.CreateUser{Name: "B", Email: "b@example.com", Age: 2}).Execute(ctx)
		require.NoError(t, err)

		users, err := factory.ListUsers().Execute(ctx)

		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
	t.Run("Should return empty result for empty store", func(t *testing.T) {
		factory := uc.NewFactory(newFakeRepo())

		users, err := factory.ListUsers().Execute(testCtx())

		require.NoError(t, err)
		assert.Empty(t, users)
	})
}
