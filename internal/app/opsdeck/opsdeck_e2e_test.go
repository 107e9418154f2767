//go:build e2e
// +build e2e

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

package opsdeck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// OpsdeckE2ETestSuite boots the whole application from config files on disk
// and exercises the API over a real TCP listener.
type OpsdeckE2ETestSuite struct {
	suite.Suite
	confDir   string
	serverURL string
	cancel    context.CancelFunc
	done      chan error
}

const e2ePortOffset = 1000

func (s *OpsdeckE2ETestSuite) SetupSuite() {
	s.confDir = filepath.Join(s.T().TempDir(), "conf")
	require.NoError(s.T(), os.MkdirAll(s.confDir, 0755))

	deployment := fmt.Sprintf(`[server]
hostname = "localhost"
offset = %d

[identity]
mode = "local"
sessionTtlMinutes = 60

[store]
seedFile = "seed-users.yaml"
`, e2ePortOffset)
	loggerConfig := `[logger.handler]
format = "json"
outputPath = "stdout"

[logger.level.components]
default = "info"
`
	seed := `users:
  - id: usr-admin
    email: admin@example.com
    displayName: Console Admin
    role: admin
    password: changeme
`
	s.writeConfFile("deployment.toml", deployment)
	s.writeConfFile("LoggerConfig.toml", loggerConfig)
	s.writeConfFile("seed-users.yaml", seed)

	os.Setenv("OPSDECK_CONF", s.confDir)
	s.serverURL = fmt.Sprintf("http://localhost:%d", basePort+e2ePortOffset)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan error, 1)
	go func() {
		s.done <- Run(ctx)
	}()

	s.waitUntilLive(10 * time.Second)
}

func (s *OpsdeckE2ETestSuite) TearDownSuite() {
	s.cancel()
	select {
	case err := <-s.done:
		require.NoError(s.T(), err)
	case <-time.After(15 * time.Second):
		s.T().Fatal("server did not shut down in time")
	}
	os.Unsetenv("OPSDECK_CONF")
}

func (s *OpsdeckE2ETestSuite) writeConfFile(name, content string) {
	require.NoError(s.T(), os.WriteFile(filepath.Join(s.confDir, name), []byte(content), 0644))
}

func (s *OpsdeckE2ETestSuite) waitUntilLive(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(s.serverURL + "/livez")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	s.T().Fatal("server never became live")
}

func (s *OpsdeckE2ETestSuite) TestFullLoginAndUserFlow() {
	t := s.T()

	// discover the API from the root document
	resp, err := http.Get(s.serverURL + "/api")
	require.NoError(t, err)
	var root struct {
		Links map[string]struct {
			Href string `json:"href"`
		} `json:"_links"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&root))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	usersHref := root.Links["users"].Href
	require.NotEmpty(t, usersHref)

	// log in against the seeded account
	loginBody, _ := json.Marshal(map[string]string{
		"email":    "admin@example.com",
		"password": "changeme",
	})
	resp, err = http.Post(s.serverURL+"/sessions", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, login.Token)

	// the token opens the protected collection
	req, err := http.NewRequest("GET", s.serverURL+usersHref, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	require.Equal(t, 1, users.Total)
}

func (s *OpsdeckE2ETestSuite) TestProtectedRouteWithoutToken() {
	resp, err := http.Get(s.serverURL + "/users")
	require.NoError(s.T(), err)
	defer resp.Body.Close()
	require.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
}

func TestOpsdeckE2ETestSuite(t *testing.T) {
	suite.Run(t, new(OpsdeckE2ETestSuite))
}
