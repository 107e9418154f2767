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

// Package services contains the application services the HTTP adapters
// call: thin validation and orchestration over the store ports.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opsdeck/opsdeck/internal/app/core/domain"
)

// ValidationError marks input problems the HTTP layer maps to 400/422.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

const (
	DefaultPageLimit = 25
	MaxPageLimit     = 100
)

// ClampPage normalises offset/limit into the supported window.
func ClampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return offset, limit
}

type UserService struct {
	store domain.UserStore
	ids   IDGenerator
	now   func() time.Time
}

// IDGenerator produces unique opaque identifiers.
type IDGenerator func() string

func NewUserService(store domain.UserStore, ids IDGenerator) *UserService {
	return &UserService{store: store, ids: ids, now: time.Now}
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]domain.User, domain.Page, error) {
	offset, limit = ClampPage(offset, limit)
	users, total, err := s.store.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, domain.Page{}, fmt.Errorf("listing users: %w", err)
	}
	return users, domain.Page{Offset: offset, Limit: limit, Total: total}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) Create(ctx context.Context, email, displayName, role string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, &ValidationError{Field: "email", Reason: "must be a valid address"}
	}
	if role == "" {
		role = domain.RoleMember
	}
	if role != domain.RoleAdmin && role != domain.RoleMember {
		return domain.User{}, &ValidationError{Field: "role", Reason: "must be admin or member"}
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, fmt.Errorf("user %s: %w", email, domain.ErrConflict)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:          s.ids(),
		Email:       email,
		DisplayName: displayName,
		Role:        role,
		Status:      domain.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, displayName, role, status *string) (domain.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if displayName != nil {
		user.DisplayName = *displayName
	}
	if role != nil {
		if *role != domain.RoleAdmin && *role != domain.RoleMember {
			return domain.User{}, &ValidationError{Field: "role", Reason: "must be admin or member"}
		}
		user.Role = *role
	}
	if status != nil {
		if *status != domain.StatusActive && *status != domain.StatusDisabled {
			return domain.User{}, &ValidationError{Field: "status", Reason: "must be active or disabled"}
		}
		user.Status = *status
	}
	user.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("updating user %s: %w", id, err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteUser(ctx, id)
}
