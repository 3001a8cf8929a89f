package backend

import (
	"context"

	"finsight/internal/session"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the session repository and optional cleanup function.
type Result struct {
	Sessions session.Repository
	Cleanup  CleanupFunc
}

// Factory creates session persistence backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
}

// Type selects the session persistence backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
