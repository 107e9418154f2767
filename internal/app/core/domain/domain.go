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

// Package domain holds the admin-console entities and the store ports the
// adapters implement.
package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// User is an account visible in the admin console.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	RoleAdmin  = "admin"
	RoleMember = "member"

	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Session is one authenticated presence of a user. Token is the opaque
// bearer secret; it is never embedded in API responses.
type Session struct {
	ID        string
	UserID    string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// ApiKey is a long-lived programmatic credential owned by a user. Secret is
// only populated on creation; afterwards only the prefix is retrievable.
type ApiKey struct {
	ID        string
	UserID    string
	Label     string
	Prefix    string
	Secret    string
	CreatedAt time.Time
}

// Page carries pagination bookkeeping for collection responses.
type Page struct {
	Offset int
	Limit  int
	Total  int
}

// UserStore is the persistence port for users.
type UserStore interface {
	ListUsers(ctx context.Context, offset, limit int) ([]User, int, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, id string) error
}

// SessionStore is the persistence port for sessions.
type SessionStore interface {
	ListSessions(ctx context.Context, offset, limit int) ([]Session, int, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	GetSessionByToken(ctx context.Context, token string) (Session, error)
	CreateSession(ctx context.Context, session Session) error
	UpdateSession(ctx context.Context, session Session) error
}

// ApiKeyStore is the persistence port for API keys.
type ApiKeyStore interface {
	ListApiKeys(ctx context.Context, userID string) ([]ApiKey, error)
	GetApiKey(ctx context.Context, userID, id string) (ApiKey, error)
	CreateApiKey(ctx context.Context, key ApiKey) error
	DeleteApiKey(ctx context.Context, userID, id string) error
}
