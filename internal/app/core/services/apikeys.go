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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/opsdeck/opsdeck/internal/app/core/domain"
)

type ApiKeyService struct {
	keys  domain.ApiKeyStore
	users domain.UserStore
	ids   IDGenerator
	now   func() time.Time
}

func NewApiKeyService(keys domain.ApiKeyStore, users domain.UserStore, ids IDGenerator) *ApiKeyService {
	return &ApiKeyService{keys: keys, users: users, ids: ids, now: time.Now}
}

func (s *ApiKeyService) List(ctx context.Context, userID string) ([]domain.ApiKey, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.keys.ListApiKeys(ctx, userID)
}

func (s *ApiKeyService) Get(ctx context.Context, userID, id string) (domain.ApiKey, error) {
	return s.keys.GetApiKey(ctx, userID, id)
}

// Create mints a new key for the user. The full secret is returned exactly
// once, on this call; the store keeps only the displayable prefix.
func (s *ApiKeyService) Create(ctx context.Context, userID, label string) (domain.ApiKey, error) {
	if strings.TrimSpace(label) == "" {
		return domain.ApiKey{}, &ValidationError{Field: "label", Reason: "must not be empty"}
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return domain.ApiKey{}, err
	}

	secret, err := newSecret()
	if err != nil {
		return domain.ApiKey{}, fmt.Errorf("generating api key secret: %w", err)
	}

	key := domain.ApiKey{
		ID:        s.ids(),
		UserID:    userID,
		Label:     strings.TrimSpace(label),
		Prefix:    secret[:8],
		Secret:    secret,
		CreatedAt: s.now().UTC(),
	}
	stored := key
	stored.Secret = ""
	if err := s.keys.CreateApiKey(ctx, stored); err != nil {
		return domain.ApiKey{}, fmt.Errorf("creating api key: %w", err)
	}
	return key, nil
}

func (s *ApiKeyService) Delete(ctx context.Context, userID, id string) error {
	return s.keys.DeleteApiKey(ctx, userID, id)
}

func newSecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "odk_" + hex.EncodeToString(buf), nil
}
