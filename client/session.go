package client

import (
	"context"
	"errors"
	"sync"
)

var ErrNotAdmin = errors.New("client: signed-in account is not the administrator")

// AdminChecker is the server-side admin lookup a Session defers to.
type AdminChecker interface {
	IsAdmin(ctx context.Context, token string) (bool, error)
}

// Session holds the access token of the signed-in administrator. It only ever
// holds a token the server has confirmed; the server re-checks it on every
// gated call regardless.
type Session struct {
	mu    sync.RWMutex
	token string
	admin bool
}

func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) IsAdmin() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

func (s *Session) Clear() {
	s.mu.Lock()
	s.token, s.admin = "", false
	s.mu.Unlock()
}

// Apply handles a session change reported by the identity provider. An empty
// token signs out. Any other token is kept only when checker confirms it
// belongs to the administrator; otherwise the session is cleared.
func (s *Session) Apply(ctx context.Context, checker AdminChecker, token string) error {
	if token == "" {
		s.Clear()
		return nil
	}

	admin, err := checker.IsAdmin(ctx, token)
	if err != nil {
		s.Clear()
		return err
	}
	if !admin {
		s.Clear()
		return ErrNotAdmin
	}

	s.mu.Lock()
	s.token, s.admin = token, true
	s.mu.Unlock()
	return nil
}
