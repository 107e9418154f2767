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

package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/opsdeck/internal/app/adapters/store/memory"
)

func localProvider(t *testing.T, ttl time.Duration) (*Local, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.LoadSeedBytes([]byte(`
users:
  - id: usr-admin
    email: admin@example.com
    role: admin
    password: changeme
  - id: usr-locked
    email: locked@example.com
    status: disabled
    password: changeme
  - id: usr-nopass
    email: nopass@example.com
`)))
	counter := 0
	ids := func() string {
		counter++
		return fmt.Sprintf("ses-%d", counter)
	}
	return NewLocal(store, store, store, ttl, ids), store
}

func TestLoginIssuesSession(t *testing.T) {
	ctx := context.Background()
	provider, store := localProvider(t, time.Hour)

	session, err := provider.Login(ctx, "admin@example.com", "changeme")
	require.NoError(t, err)
	assert.Equal(t, "usr-admin", session.UserID)
	assert.Len(t, session.Token, 64)
	assert.Equal(t, time.Hour, session.ExpiresAt.Sub(session.IssuedAt))

	stored, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Token, stored.Token)

	// two logins, two distinct tokens
	second, err := provider.Login(ctx, "admin@example.com", "changeme")
	require.NoError(t, err)
	assert.NotEqual(t, session.Token, second.Token)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	provider, _ := localProvider(t, time.Hour)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "ghost@example.com", "changeme"},
		{"wrong password", "admin@example.com", "nope"},
		{"empty password", "admin@example.com", ""},
		{"disabled user", "locked@example.com", "changeme"},
		{"user without credential", "nopass@example.com", "anything"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrBadCredentials)
		})
	}
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	provider, store := localProvider(t, time.Hour)

	session, err := provider.Login(ctx, "admin@example.com", "changeme")
	require.NoError(t, err)

	verified, err := provider.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, verified.ID)

	_, err = provider.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = provider.Verify(ctx, "bogus")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	session.Revoked = true
	require.NoError(t, store.UpdateSession(ctx, session))
	_, err = provider.Verify(ctx, session.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsExpiredSession(t *testing.T) {
	ctx := context.Background()
	provider, _ := localProvider(t, time.Hour)

	session, err := provider.Login(ctx, "admin@example.com", "changeme")
	require.NoError(t, err)

	provider.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = provider.Verify(ctx, session.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDefaultTTL(t *testing.T) {
	provider, _ := localProvider(t, 0)

	session, err := provider.Login(context.Background(), "admin@example.com", "changeme")
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, session.ExpiresAt.Sub(session.IssuedAt))
}
