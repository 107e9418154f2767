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

// Package identity federates authentication: credential verification and
// bearer-token sessions. The local provider emulates a hosted user pool
// against the seeded store and is the only implementation shipped here;
// deployments against a managed pool plug in their own Provider.
package identity

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/opsdeck/opsdeck/internal/app/core/domain"
)

var (
	ErrBadCredentials = errors.New("invalid email or password")
	ErrTokenInvalid   = errors.New("token invalid or expired")
)

// Provider is the authentication port the HTTP adapter consumes.
type Provider interface {
	// Login verifies credentials and opens a session.
	Login(ctx context.Context, email, password string) (domain.Session, error)
	// Verify resolves a bearer token to its live session.
	Verify(ctx context.Context, token string) (domain.Session, error)
}

// CredentialSource exposes seeded passwords; implemented by the memory store.
type CredentialSource interface {
	Credential(userID string) (string, bool)
}

// Local is the development emulator: passwords come from the seed fixture,
// tokens are opaque random values held in the session store.
type Local struct {
	users       domain.UserStore
	sessions    domain.SessionStore
	credentials CredentialSource
	ttl         time.Duration
	ids         func() string
	now         func() time.Time
}

func NewLocal(users domain.UserStore, sessions domain.SessionStore, credentials CredentialSource, ttl time.Duration, ids func() string) *Local {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Local{
		users:       users,
		sessions:    sessions,
		credentials: credentials,
		ttl:         ttl,
		ids:         ids,
		now:         time.Now,
	}
}

func (l *Local) Login(ctx context.Context, email, password string) (domain.Session, error) {
	user, err := l.users.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.Session{}, ErrBadCredentials
	}
	if user.Status != domain.StatusActive {
		return domain.Session{}, ErrBadCredentials
	}
	expected, ok := l.credentials.Credential(user.ID)
	if !ok || subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		return domain.Session{}, ErrBadCredentials
	}

	token, err := newToken()
	if err != nil {
		return domain.Session{}, fmt.Errorf("issuing token: %w", err)
	}
	now := l.now().UTC()
	session := domain.Session{
		ID:        l.ids(),
		UserID:    user.ID,
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(l.ttl),
	}
	if err := l.sessions.CreateSession(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("storing session: %w", err)
	}
	return session, nil
}

func (l *Local) Verify(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, ErrTokenInvalid
	}
	session, err := l.sessions.GetSessionByToken(ctx, token)
	if err != nil {
		return domain.Session{}, ErrTokenInvalid
	}
	if session.Revoked || session.Expired(l.now().UTC()) {
		return domain.Session{}, ErrTokenInvalid
	}
	return session, nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
