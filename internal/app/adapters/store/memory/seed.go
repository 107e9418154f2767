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

package memory

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/opsdeck/opsdeck/internal/app/core/domain"
)

// seedFile mirrors the YAML fixture layout:
//
//	users:
//	  - id: usr-1
//	    email: admin@example.com
//	    displayName: Admin
//	    role: admin
//	    password: changeme
type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	ID          string `yaml:"id"`
	Email       string `yaml:"email"`
	DisplayName string `yaml:"displayName"`
	Role        string `yaml:"role"`
	Status      string `yaml:"status"`
	Password    string `yaml:"password"`
}

// LoadSeed populates the store from a YAML fixture. Intended for local
// development and tests; production deployments federate to a real identity
// pool instead.
func (s *Store) LoadSeed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}
	return s.LoadSeedBytes(raw)
}

func (s *Store) LoadSeedBytes(raw []byte) error {
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	now := time.Now().UTC()
	for i, su := range seed.Users {
		if su.ID == "" || su.Email == "" {
			return fmt.Errorf("seed user #%d must have id and email", i+1)
		}
		role := su.Role
		if role == "" {
			role = domain.RoleMember
		}
		status := su.Status
		if status == "" {
			status = domain.StatusActive
		}
		user := domain.User{
			ID:          su.ID,
			Email:       su.Email,
			DisplayName: su.DisplayName,
			Role:        role,
			Status:      status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.CreateUser(context.Background(), user); err != nil {
			return fmt.Errorf("seeding user %s: %w", su.ID, err)
		}
		if su.Password != "" {
			s.setCredential(su.ID, su.Password)
		}
	}
	return nil
}
