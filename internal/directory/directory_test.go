package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/directory"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/store"
)

func newDirectory(t *testing.T) (*directory.Directory, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	dir, err := directory.New(context.Background(), st, zap.NewNop(), bcrypt.MinCost)
	require.NoError(t, err)
	return dir, st
}

func TestBootstrapSeedsDemoUsers(t *testing.T) {
	ctx := context.Background()
	dir, st := newDirectory(t)

	users := dir.Users()
	require.Len(t, users, 3)
	roles := map[domain.Role]bool{}
	for _, u := range users {
		roles[u.Role] = true
	}
	assert.True(t, roles[domain.RoleStandard])
	assert.True(t, roles[domain.RoleIT])
	assert.True(t, roles[domain.RoleAdmin])

	// the seed is persisted immediately
	_, err := st.Get(ctx, store.KeyUsers)
	require.NoError(t, err)

	// a second directory over the same store loads the snapshot, not a new seed
	again, err := directory.New(ctx, st, zap.NewNop(), bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, users, again.Users())
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	dir, st := newDirectory(t)

	t.Run("success sets and persists the session", func(t *testing.T) {
		user, err := dir.Login(ctx, "it@example.com", directory.DemoPassword)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleIT, user.Role)

		current := dir.CurrentUser()
		require.NotNil(t, current)
		assert.Equal(t, user.ID, current.ID)

		_, err = st.Get(ctx, store.KeyCurrentUser)
		assert.NoError(t, err)
	})

	t.Run("session survives a restart", func(t *testing.T) {
		again, err := directory.New(ctx, st, zap.NewNop(), bcrypt.MinCost)
		require.NoError(t, err)
		current := again.CurrentUser()
		require.NotNil(t, current)
		assert.Equal(t, "it@example.com", current.Email)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, badPassword := dir.Login(ctx, "it@example.com", "nope")
		_, badEmail := dir.Login(ctx, "ghost@example.com", directory.DemoPassword)
		assert.ErrorIs(t, badPassword, directory.ErrInvalidCredentials)
		assert.ErrorIs(t, badEmail, directory.ErrInvalidCredentials)
		assert.Equal(t, badPassword, badEmail)
	})

	t.Run("logout clears the session", func(t *testing.T) {
		require.NoError(t, dir.Logout(ctx))
		assert.Nil(t, dir.CurrentUser())
		_, err := st.Get(ctx, store.KeyCurrentUser)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory(t)

	t.Run("assigns a fresh id and does not log in", func(t *testing.T) {
		user, err := dir.Register(ctx, directory.NewUser{
			Name:     "New IT",
			Email:    "it@x.com",
			Password: "pw",
			Role:     domain.RoleIT,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Nil(t, dir.CurrentUser())
		assert.NotEqual(t, "pw", user.PasswordHash)
	})

	t.Run("duplicate email fails and leaves the directory unchanged", func(t *testing.T) {
		before := dir.Users()
		_, err := dir.Register(ctx, directory.NewUser{
			Name:     "Impostor",
			Email:    "it@x.com",
			Password: "other",
			Role:     domain.RoleStandard,
		})
		assert.ErrorIs(t, err, directory.ErrEmailTaken)
		assert.Equal(t, before, dir.Users())

		count := 0
		for _, u := range dir.Users() {
			if u.Email == "it@x.com" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("email comparison is case-sensitive", func(t *testing.T) {
		_, err := dir.Register(ctx, directory.NewUser{
			Name:     "Shouty",
			Email:    "IT@X.COM",
			Password: "pw",
			Role:     domain.RoleIT,
		})
		assert.NoError(t, err)
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory(t)

	t.Run("refreshes the session when the session holder changes", func(t *testing.T) {
		user, err := dir.Login(ctx, "user@example.com", directory.DemoPassword)
		require.NoError(t, err)

		updated := *user
		updated.Name = "Renamed"
		result, err := dir.UpdateUser(ctx, updated)
		require.NoError(t, err)
		require.NotNil(t, result)

		current := dir.CurrentUser()
		require.NotNil(t, current)
		assert.Equal(t, "Renamed", current.Name)
	})

	t.Run("leaves other sessions untouched", func(t *testing.T) {
		it, ok := dir.UserByEmail("it@example.com")
		require.True(t, ok)
		updated := *it
		updated.Name = "Field Tech"
		_, err := dir.UpdateUser(ctx, updated)
		require.NoError(t, err)

		current := dir.CurrentUser()
		require.NotNil(t, current)
		assert.Equal(t, "Renamed", current.Name)
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		result, err := dir.UpdateUser(ctx, domain.User{ID: "ghost", Email: "ghost@example.com"})
		assert.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("rejects an email held by another account", func(t *testing.T) {
		it, ok := dir.UserByEmail("it@example.com")
		require.True(t, ok)
		updated := *it
		updated.Email = "admin@example.com"
		_, err := dir.UpdateUser(ctx, updated)
		assert.ErrorIs(t, err, directory.ErrEmailTaken)
	})

	t.Run("keeping your own email is not a conflict", func(t *testing.T) {
		it, ok := dir.UserByEmail("it@example.com")
		require.True(t, ok)
		updated := *it
		updated.Name = "Same Email"
		_, err := dir.UpdateUser(ctx, updated)
		assert.NoError(t, err)
	})
}

func TestAddAndDeleteUser(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory(t)

	t.Run("add user always assigns a fresh id and skips the uniqueness check", func(t *testing.T) {
		first, err := dir.AddUser(ctx, directory.NewUser{
			Name:     "Dup",
			Email:    "dup@example.com",
			Password: "pw",
			Role:     domain.RoleStandard,
		})
		require.NoError(t, err)

		second, err := dir.AddUser(ctx, directory.NewUser{
			Name:     "Dup Again",
			Email:    "dup@example.com",
			Password: "pw",
			Role:     domain.RoleStandard,
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("delete removes the record", func(t *testing.T) {
		user, ok := dir.UserByEmail("dup@example.com")
		require.True(t, ok)
		removed, err := dir.DeleteUser(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, removed)
		_, ok = dir.UserByID(user.ID)
		assert.False(t, ok)
	})

	t.Run("delete of an unknown id is a silent no-op", func(t *testing.T) {
		removed, err := dir.DeleteUser(ctx, "ghost")
		assert.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("delete does not clear a matching session", func(t *testing.T) {
		admin, err := dir.Login(ctx, "admin@example.com", directory.DemoPassword)
		require.NoError(t, err)

		removed, err := dir.DeleteUser(ctx, admin.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		// refusing this case is the caller's job; the directory keeps the session
		current := dir.CurrentUser()
		require.NotNil(t, current)
		assert.Equal(t, admin.ID, current.ID)
	})
}
