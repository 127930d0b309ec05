package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/model/auth"
)

// sessionStore holds login sessions by token ID
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[auth.TokenID]auth.Token
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[auth.TokenID]auth.Token)}
}

func (s *sessionStore) lookup(id auth.TokenID) (auth.Token, error) {
	token, ok := s.sessions[id]
	if !ok {
		return auth.Token{}, goerr.Wrap(ErrNotFound, "session not found", goerr.V("token_id", id))
	}
	return token, nil
}

func (m *Memory) PutToken(ctx context.Context, token *auth.Token) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}

	m.sessions.mu.Lock()
	defer m.sessions.mu.Unlock()
	m.sessions.sessions[token.ID] = *token
	return nil
}

func (m *Memory) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid token ID")
	}

	m.sessions.mu.RLock()
	defer m.sessions.mu.RUnlock()

	token, err := m.sessions.lookup(tokenID)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteToken fails with ErrNotFound when the session is already gone
func (m *Memory) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	if err := tokenID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token ID")
	}

	m.sessions.mu.Lock()
	defer m.sessions.mu.Unlock()

	if _, err := m.sessions.lookup(tokenID); err != nil {
		return err
	}
	delete(m.sessions.sessions, tokenID)
	return nil
}
