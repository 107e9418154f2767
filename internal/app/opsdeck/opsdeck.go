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

// Package opsdeck wires the admin console together: configuration, store,
// identity, controllers and the HTTP server.
package opsdeck

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/opsdeck/opsdeck/internal/app/adapters/httpapi"
	"github.com/opsdeck/opsdeck/internal/app/adapters/identity"
	"github.com/opsdeck/opsdeck/internal/app/adapters/store/memory"
	"github.com/opsdeck/opsdeck/internal/app/adapters/webclient"
	"github.com/opsdeck/opsdeck/internal/app/core/services"
	"github.com/opsdeck/opsdeck/internal/pkg/config"
)

const basePort = 8470

// Run starts the console and blocks until the context is cancelled.
func Run(ctx context.Context) error {
	start := time.Now()
	PrintWelcomeMessage()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	confPath := os.Getenv("OPSDECK_CONF")
	if confPath == "" {
		exePath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("cannot determine executable path: %w", err)
		}
		confPath = filepath.Join(filepath.Dir(exePath), "..", "conf")
	}

	if err := config.InitLogging(confPath); err != nil {
		return fmt.Errorf("initialization error: %w", err)
	}
	deployment, err := config.LoadDeployment(confPath)
	if err != nil {
		return fmt.Errorf("initialization error: %w", err)
	}

	server, err := BuildServer(deployment, confPath)
	if err != nil {
		return err
	}

	server.StartServer(ctx)
	log.Printf("Server started in: %v", time.Since(start))

	<-ctx.Done()
	server.StopServer()
	log.Println("HTTP server shutdown gracefully")
	return nil
}

// BuildServer assembles the store, services, identity provider and all
// controllers into a ready-to-start HTTP server. Separated from Run so
// tests can build a fully wired server without config files.
func BuildServer(deployment config.Deployment, confPath string) (*httpapi.Server, error) {
	store := memory.NewStore()
	if deployment.Store.SeedFile != "" {
		seedPath := deployment.Store.SeedFile
		if !filepath.IsAbs(seedPath) {
			seedPath = filepath.Join(confPath, seedPath)
		}
		if err := store.LoadSeed(seedPath); err != nil {
			return nil, fmt.Errorf("loading seed data: %w", err)
		}
	}

	if deployment.Identity.Mode != "local" {
		return nil, fmt.Errorf("unsupported identity mode %q", deployment.Identity.Mode)
	}
	provider := identity.NewLocal(store, store, store,
		time.Duration(deployment.Identity.SessionTTLMinutes)*time.Minute, NewID)

	listenPort := fmt.Sprintf(":%d", basePort+deployment.Server.Offset)
	server := httpapi.NewServer(listenPort, deployment.Server.Hostname, provider, deployment.CORS)

	userService := services.NewUserService(store, NewID)
	sessionService := services.NewSessionService(store)
	keyService := services.NewApiKeyService(store, store, NewID)

	controllers := []httpapi.Controller{
		httpapi.NewRootController(server.Table()),
		httpapi.NewCatalogController(server.Table()),
		httpapi.NewUsersController(userService, sessionService, server.Table()),
		httpapi.NewSessionsController(sessionService, provider, server.Table()),
		httpapi.NewApiKeysController(keyService, server.Table()),
	}
	for _, controller := range controllers {
		if err := server.RegisterController(controller); err != nil {
			return nil, fmt.Errorf("registering %s routes: %w", controller.Name(), err)
		}
	}

	if deployment.WebClient.AssetURI != "" {
		assets, err := webclient.New(deployment.WebClient.AssetURI)
		if err != nil {
			return nil, err
		}
		server.SetAssets(assets)
	}

	return server, nil
}

func PrintWelcomeMessage() {
	colors := []string{
		"\033[31m", // Red
		"\033[33m", // Yellow
		"\033[32m", // Green
		"\033[36m", // Cyan
		"\033[34m", // Blue
		"\033[35m", // Magenta
	}
	reset := "\033[0m"

	art := []string{
		"",
		"   ___                 _           _    ",
		"  / _ \\ _ __  ___   __| | ___  ___| | __",
		" | | | | '_ \\/ __| / _` |/ _ \\/ __| |/ /",
		" | |_| | |_) \\__ \\| (_| |  __/ (__|   < ",
		"  \\___/| .__/|___/ \\__,_|\\___|\\___|_|\\_\\",
		"       |_|                              ",
	}
	for _, line := range art {
		for i, char := range line {
			color := colors[i%len(colors)]
			fmt.Printf("%s%c", color, char)
		}
		fmt.Println(reset)
	}
}
