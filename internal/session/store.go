package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"finsight/internal/api"
)

// Store owns the authenticated session: the token, the current user, and the
// arming of the shared transport's Authorization header. It is the only
// component allowed to write the transport's token.
type Store struct {
	repo   Repository
	client *api.Client

	mu    sync.RWMutex
	token string
	user  *api.User
}

// LoginResult is what Login hands back to the caller beyond the session
// itself. DemoSeeded is true the first time a user logs in and the server
// generated demo data for them.
type LoginResult struct {
	DemoSeeded bool
}

func NewStore(repo Repository, client *api.Client) *Store {
	return &Store{repo: repo, client: client}
}

// Restore loads the persisted session, if any, and arms the transport with
// its token. Missing or malformed persisted data leaves the session empty.
// Restore never fails; it reports whether a session was restored.
func (s *Store) Restore(ctx context.Context) bool {
	rec, ok, err := s.repo.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load persisted session, starting unauthenticated", "error", err)
		return false
	}
	if !ok || !rec.valid() {
		return false
	}

	s.mu.Lock()
	s.token = rec.Token
	user := rec.User
	s.user = &user
	s.mu.Unlock()
	s.client.SetToken(rec.Token)

	slog.InfoContext(ctx, "Session restored", "user_id", rec.User.ID, "username", rec.User.Username)
	return true
}

// Login authenticates, persists the session, and arms the transport. On
// failure the session is unchanged and the error carries the server's
// message (errors.Is(err, api.ErrAuthentication) for bad credentials).
func (s *Store) Login(ctx context.Context, username, password string) (LoginResult, error) {
	resp, err := s.client.Login(ctx, username, password)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return LoginResult{}, &api.Error{Kind: api.ErrAuthentication, Message: "login response carried no token"}
	}

	rec := Record{Token: resp.Token, User: resp.User}
	if err := s.repo.Save(ctx, rec); err != nil {
		// The session is still good for this process; it just won't
		// survive a restart.
		slog.ErrorContext(ctx, "Failed to persist session", "error", err, "user_id", resp.User.ID)
	}

	s.mu.Lock()
	s.token = resp.Token
	user := resp.User
	s.user = &user
	s.mu.Unlock()
	s.client.SetToken(resp.Token)

	slog.InfoContext(ctx, "Logged in",
		"user_id", resp.User.ID,
		"username", resp.User.Username,
		"demo_seeded", resp.DemoSeeded)
	return LoginResult{DemoSeeded: resp.DemoSeeded}, nil
}

// Verify confirms the armed token against the server and refreshes the user
// record from it. A rejected token surfaces as api.ErrAuthentication; any
// other error means the server could not be asked and the session may still
// be good.
func (s *Store) Verify(ctx context.Context) (api.User, error) {
	user, err := s.client.Me(ctx)
	if err != nil {
		return api.User{}, fmt.Errorf("verify session: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return user, nil
}

// Register creates an account. It performs no session change; the caller
// logs in separately.
func (s *Store) Register(ctx context.Context, username, email, password, fullName string) error {
	if err := s.client.Register(ctx, username, email, password, fullName); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout clears the persisted and in-memory session and disarms the
// transport. Idempotent; a failed persistence clear still tears down the
// in-process session so no further request carries the old token.
func (s *Store) Logout(ctx context.Context) {
	if err := s.repo.Clear(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to clear persisted session", "error", err)
	}

	s.mu.Lock()
	wasAuthenticated := s.token != ""
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	s.client.ClearToken()

	if wasAuthenticated {
		slog.InfoContext(ctx, "Logged out")
	}
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// User returns the current user, if authenticated.
func (s *Store) User() (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return api.User{}, false
	}
	return *s.user, true
}

// Token returns the current session token ("" when unauthenticated).
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
