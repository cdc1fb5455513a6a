package service

import (
	"context"
	"sync"
	"time"

	"go-market-auth/internal/model"
)

// In-memory stand-ins for the pgx repositories. The token store guards
// its consumed transition with a mutex, mirroring the conditional
// UPDATE the real store runs.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newFakeUserStore(users ...model.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]model.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.TokensValidAfter = time.Now().UTC()
	s.users[userID] = u
	return nil
}

func (s *fakeUserStore) SetEmailVerified(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.EmailVerified = true
	s.users[userID] = u
	return nil
}

func (s *fakeUserStore) UpdateRole(_ context.Context, userID string, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.Role = role
	s.users[userID] = u
	return nil
}

func (s *fakeUserStore) get(id string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]model.RecoveryToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]model.RecoveryToken{}}
}

func (s *fakeTokenStore) Store(_ context.Context, token model.RecoveryToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Token] = token
	return nil
}

func (s *fakeTokenStore) Consume(_ context.Context, token string, purpose model.TokenPurpose) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tokens[token]
	if !ok || record.Purpose != purpose {
		return "", model.ErrInvalidToken
	}
	if record.ConsumedAt != nil {
		return "", model.ErrTokenConsumed
	}
	if !record.ExpiresAt.After(time.Now()) {
		return "", model.ErrTokenExpired
	}

	now := time.Now().UTC()
	record.ConsumedAt = &now
	s.tokens[token] = record
	return record.Subject, nil
}

func (s *fakeTokenStore) issued() []model.RecoveryToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.RecoveryToken, 0, len(s.tokens))
	for _, record := range s.tokens {
		out = append(out, record)
	}
	return out
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	email   string
	purpose model.TokenPurpose
	token   string
}

func (m *recordingMailer) SendRecoveryToken(_ context.Context, email string, purpose model.TokenPurpose, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{email: email, purpose: purpose, token: token})
	return nil
}

func (m *recordingMailer) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}
