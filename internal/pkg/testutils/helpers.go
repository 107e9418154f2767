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

// Package testutils provides helpers for component tests: a fully wired
// server over a seeded store, and a login shortcut.
package testutils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/opsdeck/opsdeck/internal/app/adapters/httpapi"
	"github.com/opsdeck/opsdeck/internal/app/opsdeck"
	"github.com/opsdeck/opsdeck/internal/pkg/config"
)

// SeedYAML is the fixture most tests run against.
const SeedYAML = `users:
  - id: usr-admin
    email: admin@example.com
    displayName: Console Admin
    role: admin
    password: changeme
  - id: usr-demo
    email: demo@example.com
    displayName: Demo Member
    role: member
    password: demo
`

// WriteTestConf creates a temp conf directory holding the seed fixture and
// returns its path.
func WriteTestConf(t *testing.T) string {
	t.Helper()
	confPath := t.TempDir()
	if err := os.WriteFile(filepath.Join(confPath, "seed-users.yaml"), []byte(SeedYAML), 0644); err != nil {
		t.Fatalf("writing seed fixture: %v", err)
	}
	return confPath
}

// TestDeployment is the deployment configuration the wired test server
// runs with.
func TestDeployment() config.Deployment {
	return config.Deployment{
		Server:   config.ServerConfig{Hostname: "localhost"},
		Identity: config.IdentityConfig{Mode: "local", SessionTTLMinutes: 60},
		Store:    config.StoreConfig{SeedFile: "seed-users.yaml"},
	}
}

// BuildTestServer wires a complete server over the seeded memory store.
func BuildTestServer(t *testing.T) *httpapi.Server {
	t.Helper()
	server, err := opsdeck.BuildServer(TestDeployment(), WriteTestConf(t))
	if err != nil {
		t.Fatalf("building test server: %v", err)
	}
	return server
}

// Login performs the session-create operation and returns the bearer token.
func Login(t *testing.T, ts *httptest.Server, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(ts.URL+"/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("login returned status %d", resp.StatusCode)
	}
	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if parsed.Token == "" {
		t.Fatal("login response carried no token")
	}
	return parsed.Token
}
