package store

import (
	"context"
	"errors"
)

// Snapshot keys used by the directory and registry.
const (
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
	KeyTickets     = "tickets"
)

// ErrNotFound signals an absent key on Get.
var ErrNotFound = errors.New("store: key not found")

// Store is a synchronous key-value store holding JSON-encoded snapshots.
// Implementations must persist across restarts (the memory backend is the
// exception, used for tests and throwaway demo runs).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close()
}
