/*
Copyright 2026 The Opsdeck Authors
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package memory is the in-process store used by the console: a mutex
// guarded map store implementing the domain ports, optionally seeded from a
// YAML fixture at startup.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/opsdeck/opsdeck/internal/app/core/domain"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	sessions map[string]domain.Session
	keys     map[string]domain.ApiKey

	// insertion order for deterministic listings
	userOrder    []string
	sessionOrder []string
	keyOrder     []string

	passwords map[string]string // user ID -> seed credential
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]domain.User),
		sessions:  make(map[string]domain.Session),
		keys:      make(map[string]domain.ApiKey),
		passwords: make(map[string]string),
	}
}

// --- UserStore ---

func (s *Store) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.userOrder)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]domain.User, 0, end-offset)
	for _, id := range s.userOrder[offset:end] {
		out = append(out, s.users[id])
	}
	return out, total, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrConflict)
	}
	s.users[user.ID] = user
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	delete(s.users, id)
	s.userOrder = remove(s.userOrder, id)

	// cascade: drop the user's sessions and keys
	for _, sid := range s.sessionOrder {
		if s.sessions[sid].UserID == id {
			delete(s.sessions, sid)
		}
	}
	s.sessionOrder = keep(s.sessionOrder, func(sid string) bool {
		_, ok := s.sessions[sid]
		return ok
	})
	for _, kid := range s.keyOrder {
		if s.keys[kid].UserID == id {
			delete(s.keys, kid)
		}
	}
	s.keyOrder = keep(s.keyOrder, func(kid string) bool {
		_, ok := s.keys[kid]
		return ok
	})
	return nil
}

// --- SessionStore ---

func (s *Store) ListSessions(ctx context.Context, offset, limit int) ([]domain.Session, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.sessionOrder)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]domain.Session, 0, end-offset)
	for _, id := range s.sessionOrder[offset:end] {
		out = append(out, s.sessions[id])
	}
	return out, total, nil
}

func (s *Store) ListSessionsByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Session
	for _, id := range s.sessionOrder {
		if s.sessions[id].UserID == userID {
			out = append(out, s.sessions[id])
		}
	}
	return out, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return session, nil
}

func (s *Store) GetSessionByToken(ctx context.Context, token string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.Token == token {
			return session, nil
		}
	}
	return domain.Session{}, fmt.Errorf("session token: %w", domain.ErrNotFound)
}

func (s *Store) CreateSession(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("session %s: %w", session.ID, domain.ErrConflict)
	}
	s.sessions[session.ID] = session
	s.sessionOrder = append(s.sessionOrder, session.ID)
	return nil
}

func (s *Store) UpdateSession(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return fmt.Errorf("session %s: %w", session.ID, domain.ErrNotFound)
	}
	s.sessions[session.ID] = session
	return nil
}

// --- ApiKeyStore ---

func (s *Store) ListApiKeys(ctx context.Context, userID string) ([]domain.ApiKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ApiKey
	for _, id := range s.keyOrder {
		if s.keys[id].UserID == userID {
			out = append(out, s.keys[id])
		}
	}
	return out, nil
}

func (s *Store) GetApiKey(ctx context.Context, userID, id string) (domain.ApiKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[id]
	if !ok || key.UserID != userID {
		return domain.ApiKey{}, fmt.Errorf("api key %s: %w", id, domain.ErrNotFound)
	}
	return key, nil
}

func (s *Store) CreateApiKey(ctx context.Context, key domain.ApiKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key.ID]; ok {
		return fmt.Errorf("api key %s: %w", key.ID, domain.ErrConflict)
	}
	s.keys[key.ID] = key
	s.keyOrder = append(s.keyOrder, key.ID)
	return nil
}

func (s *Store) DeleteApiKey(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.keys[id]
	if !ok || key.UserID != userID {
		return fmt.Errorf("api key %s: %w", id, domain.ErrNotFound)
	}
	delete(s.keys, id)
	s.keyOrder = remove(s.keyOrder, id)
	return nil
}

// --- seed credentials ---

// Credential returns the seeded password for a user, if any.
func (s *Store) Credential(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pw, ok := s.passwords[userID]
	return pw, ok
}

func (s *Store) setCredential(userID, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passwords[userID] = password
}

// SortedUserIDs is a test helper returning user IDs in lexical order.
func (s *Store) SortedUserIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.users))
	for id := range s.users {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func remove(list []string, id string) []string {
	return keep(list, func(x string) bool { return x != id })
}

func keep(list []string, pred func(string) bool) []string {
	out := list[:0]
	for _, x := range list {
		if pred(x) {
			out = append(out, x)
		}
	}
	return out
}
