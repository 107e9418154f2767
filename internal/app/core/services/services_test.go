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

package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/opsdeck/internal/app/adapters/store/memory"
	"github.com/opsdeck/opsdeck/internal/app/core/domain"
	"github.com/opsdeck/opsdeck/internal/app/core/services"
)

func newIDs() services.IDGenerator {
	counter := 0
	return func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name                 string
		offset, limit        int
		wantOffset, wantWide int
	}{
		{"defaults", 0, 0, 0, services.DefaultPageLimit},
		{"negative offset", -5, 10, 0, 10},
		{"negative limit", 0, -1, 0, services.DefaultPageLimit},
		{"capped limit", 3, 5000, 3, services.MaxPageLimit},
		{"in range", 7, 50, 7, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := services.ClampPage(tt.offset, tt.limit)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantWide, limit)
		})
	}
}

func TestUserServiceCreate(t *testing.T) {
	ctx := context.Background()
	svc := services.NewUserService(memory.NewStore(), newIDs())

	user, err := svc.Create(ctx, "  Admin@Example.COM  ", "Admin", "")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email, "email is normalised")
	assert.Equal(t, domain.RoleMember, user.Role, "role defaults to member")
	assert.Equal(t, domain.StatusActive, user.Status)
	assert.False(t, user.CreatedAt.IsZero())

	_, err = svc.Create(ctx, "admin@example.com", "Duplicate", "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	var validation *services.ValidationError
	_, err = svc.Create(ctx, "not-an-address", "", "")
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "email", validation.Field)

	_, err = svc.Create(ctx, "other@example.com", "", "superuser")
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "role", validation.Field)
}

func TestUserServicePartialUpdate(t *testing.T) {
	ctx := context.Background()
	svc := services.NewUserService(memory.NewStore(), newIDs())

	user, err := svc.Create(ctx, "a@example.com", "Original", domain.RoleAdmin)
	require.NoError(t, err)

	name := "Renamed"
	updated, err := svc.Update(ctx, user.ID, &name, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.DisplayName)
	assert.Equal(t, domain.RoleAdmin, updated.Role, "nil fields stay untouched")

	status := domain.StatusDisabled
	updated, err = svc.Update(ctx, user.ID, nil, nil, &status)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDisabled, updated.Status)

	bad := "frozen"
	_, err = svc.Update(ctx, user.ID, nil, nil, &bad)
	var validation *services.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = svc.Update(ctx, "missing", &name, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserServiceListPages(t *testing.T) {
	ctx := context.Background()
	svc := services.NewUserService(memory.NewStore(), newIDs())
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, fmt.Sprintf("u%d@example.com", i), "", "")
		require.NoError(t, err)
	}

	users, page, err := svc.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Page{Offset: 1, Limit: 1, Total: 3}, page)
	require.Len(t, users, 1)
	assert.Equal(t, "u1@example.com", users[0].Email)
}

func TestSessionServiceRevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.CreateUser(ctx, domain.User{ID: "usr-1", Email: "a@example.com"}))
	require.NoError(t, store.CreateSession(ctx, domain.Session{ID: "ses-1", UserID: "usr-1", Token: "tok"}))
	svc := services.NewSessionService(store)

	require.NoError(t, svc.Revoke(ctx, "ses-1"))
	session, err := svc.Get(ctx, "ses-1")
	require.NoError(t, err)
	assert.True(t, session.Revoked)

	require.NoError(t, svc.Revoke(ctx, "ses-1"), "second revoke is a no-op")
	assert.ErrorIs(t, svc.Revoke(ctx, "ses-9"), domain.ErrNotFound)
}

func TestApiKeyServiceCreate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.CreateUser(ctx, domain.User{ID: "usr-1", Email: "a@example.com"}))
	svc := services.NewApiKeyService(store, store, newIDs())

	key, err := svc.Create(ctx, "usr-1", "  deploy bot  ")
	require.NoError(t, err)
	assert.Equal(t, "deploy bot", key.Label)
	assert.True(t, strings.HasPrefix(key.Secret, "odk_"))
	assert.Equal(t, key.Secret[:8], key.Prefix)

	// the stored copy carries no secret
	stored, err := svc.Get(ctx, "usr-1", key.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Secret)
	assert.Equal(t, key.Prefix, stored.Prefix)

	var validation *services.ValidationError
	_, err = svc.Create(ctx, "usr-1", "   ")
	assert.ErrorAs(t, err, &validation)

	_, err = svc.Create(ctx, "usr-9", "orphan")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.List(ctx, "usr-9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
