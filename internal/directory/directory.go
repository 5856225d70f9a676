// Package directory owns the set of registered accounts and the current
// session. Collections live in memory; every mutation re-serializes the
// affected snapshot to the store before returning.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/store"
)

// ErrEmailTaken signals a duplicate email on register or self-update.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned for any login failure. It deliberately
// does not distinguish unknown email from wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// NewUser carries the fields of an account before an id is assigned.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// Directory holds the live user collection and the single session pointer.
type Directory struct {
	mu         sync.RWMutex
	store      store.Store
	logger     *zap.Logger
	bcryptCost int
	users      []domain.User
	session    *domain.User
}

// New loads the user and session snapshots, seeding the demo dataset when the
// users record is absent.
func New(ctx context.Context, st store.Store, logger *zap.Logger, bcryptCost int) (*Directory, error) {
	d := &Directory{store: st, logger: logger, bcryptCost: bcryptCost}

	raw, err := st.Get(ctx, store.KeyUsers)
	switch {
	case errors.Is(err, store.ErrNotFound):
		seed, err := seedUsers(bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("seed users: %w", err)
		}
		d.users = seed
		if err := d.persistUsers(ctx); err != nil {
			return nil, err
		}
		logger.Info("seeded demo users", zap.Int("count", len(seed)))
	case err != nil:
		return nil, fmt.Errorf("load users: %w", err)
	default:
		if err := json.Unmarshal(raw, &d.users); err != nil {
			return nil, fmt.Errorf("decode users: %w", err)
		}
	}

	raw, err = st.Get(ctx, store.KeyCurrentUser)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// no active session
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	default:
		var session domain.User
		if err := json.Unmarshal(raw, &session); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		d.session = &session
	}

	return d, nil
}

// Login authenticates by exact email match and password comparison. On
// success the account becomes the current session and is persisted.
func (d *Directory) Login(ctx context.Context, email, password string) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.users {
		if d.users[i].Email != email {
			continue
		}
		if auth.ComparePassword(d.users[i].PasswordHash, password) != nil {
			return nil, ErrInvalidCredentials
		}
		session := d.users[i]
		d.session = &session
		if err := d.persistSession(ctx); err != nil {
			return nil, err
		}
		out := session
		return &out, nil
	}
	return nil, ErrInvalidCredentials
}

// Logout clears the current session unconditionally.
func (d *Directory) Logout(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.session = nil
	return d.store.Delete(ctx, store.KeyCurrentUser)
}

// Register adds a new account with a fresh id. It fails when the email is
// already present and does not log the new account in.
func (d *Directory) Register(ctx context.Context, input NewUser) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.users {
		if d.users[i].Email == input.Email {
			return nil, ErrEmailTaken
		}
	}
	return d.appendUser(ctx, input)
}

// AddUser is the admin path: a fresh id is always assigned and no uniqueness
// check runs here. Callers are expected to pre-validate the email.
func (d *Directory) AddUser(ctx context.Context, input NewUser) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.appendUser(ctx, input)
}

// UpdateUser replaces the stored record matching the id. A nil result with a
// nil error means no record matched. When the updated account holds the
// current session, the session is refreshed with the new data.
func (d *Directory) UpdateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := -1
	for i := range d.users {
		if d.users[i].ID == user.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	for i := range d.users {
		if i != idx && d.users[i].Email == user.Email {
			return nil, ErrEmailTaken
		}
	}

	d.users[idx] = user
	if err := d.persistUsers(ctx); err != nil {
		return nil, err
	}

	if d.session != nil && d.session.ID == user.ID {
		session := user
		d.session = &session
		if err := d.persistSession(ctx); err != nil {
			return nil, err
		}
	}

	out := user
	return &out, nil
}

// DeleteUser removes the record. An active session pointing at the deleted id
// is left untouched; refusing that case is the caller's job. Tickets authored
// by the account are not cascaded.
func (d *Directory) DeleteUser(ctx context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.users[:0]
	removed := false
	for _, u := range d.users {
		if u.ID == id {
			removed = true
			continue
		}
		kept = append(kept, u)
	}
	if !removed {
		return false, nil
	}
	d.users = kept
	return true, d.persistUsers(ctx)
}

// Users returns a copy of the live user set.
func (d *Directory) Users() []domain.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.User, len(d.users))
	copy(out, d.users)
	return out
}

// UserByID looks up an account by id.
func (d *Directory) UserByID(id string) (*domain.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.users {
		if d.users[i].ID == id {
			out := d.users[i]
			return &out, true
		}
	}
	return nil, false
}

// UserByEmail looks up an account by exact email match.
func (d *Directory) UserByEmail(email string) (*domain.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.users {
		if d.users[i].Email == email {
			out := d.users[i]
			return &out, true
		}
	}
	return nil, false
}

// CurrentUser returns the session holder, or nil when logged out.
func (d *Directory) CurrentUser() *domain.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.session == nil {
		return nil
	}
	out := *d.session
	return &out
}

func (d *Directory) appendUser(ctx context.Context, input NewUser) (*domain.User, error) {
	hash, err := auth.HashPassword(input.Password, d.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	d.users = append(d.users, user)
	if err := d.persistUsers(ctx); err != nil {
		d.users = d.users[:len(d.users)-1]
		return nil, err
	}
	out := user
	return &out, nil
}

func (d *Directory) persistUsers(ctx context.Context) error {
	raw, err := json.Marshal(d.users)
	if err != nil {
		return err
	}
	return d.store.Set(ctx, store.KeyUsers, raw)
}

func (d *Directory) persistSession(ctx context.Context) error {
	raw, err := json.Marshal(d.session)
	if err != nil {
		return err
	}
	return d.store.Set(ctx, store.KeyCurrentUser, raw)
}
