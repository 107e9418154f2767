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

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/opsdeck/opsdeck/internal/app/core/domain"
)

type SessionService struct {
	store domain.SessionStore
	now   func() time.Time
}

func NewSessionService(store domain.SessionStore) *SessionService {
	return &SessionService{store: store, now: time.Now}
}

func (s *SessionService) List(ctx context.Context, offset, limit int) ([]domain.Session, domain.Page, error) {
	offset, limit = ClampPage(offset, limit)
	sessions, total, err := s.store.ListSessions(ctx, offset, limit)
	if err != nil {
		return nil, domain.Page{}, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, domain.Page{Offset: offset, Limit: limit, Total: total}, nil
}

func (s *SessionService) ListForUser(ctx context.Context, userID string) ([]domain.Session, error) {
	return s.store.ListSessionsByUser(ctx, userID)
}

func (s *SessionService) Get(ctx context.Context, id string) (domain.Session, error) {
	return s.store.GetSession(ctx, id)
}

// Revoke marks the session unusable. Revoking an already revoked session is
// a no-op, not an error.
func (s *SessionService) Revoke(ctx context.Context, id string) error {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if session.Revoked {
		return nil
	}
	session.Revoked = true
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("revoking session %s: %w", id, err)
	}
	return nil
}
