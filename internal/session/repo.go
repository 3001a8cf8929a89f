package session

import (
	"context"

	"finsight/internal/api"
)

// Record is the persisted session: the bearer token plus the user it belongs
// to. The two always travel together; persisting or clearing one without the
// other is a repository bug.
type Record struct {
	Token string
	User  api.User
}

// valid reports whether the record is usable as a session. A record missing
// either half is treated as absent, never as an error.
func (r Record) valid() bool {
	return r.Token != "" && r.User.ID != 0 && r.User.Username != ""
}

// Repository persists at most one session record across process restarts.
// Implementations must report malformed persisted data as absent (ok=false)
// rather than returning an error.
type Repository interface {
	Load(ctx context.Context) (Record, bool, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}
