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

// Package config loads the TOML deployment and logging configuration with
// koanf. The logging configuration is watched for changes; a reload pushes
// new levels into loggerfactory without a restart.
package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/opsdeck/opsdeck/internal/app/adapters/httpapi"
	"github.com/opsdeck/opsdeck/internal/pkg/loggerfactory"
)

// Deployment is the full deployment.toml contents.
type Deployment struct {
	Server    ServerConfig       `koanf:"server"`
	CORS      httpapi.CORSConfig `koanf:"cors"`
	Identity  IdentityConfig     `koanf:"identity"`
	Store     StoreConfig        `koanf:"store"`
	WebClient WebClientConfig    `koanf:"webclient"`
}

type ServerConfig struct {
	Hostname string `koanf:"hostname"`
	Offset   int    `koanf:"offset"`
}

type IdentityConfig struct {
	// Mode selects the provider; only "local" ships in this repo.
	Mode string `koanf:"mode"`
	// SessionTTLMinutes bounds token lifetime.
	SessionTTLMinutes int `koanf:"sessionTtlMinutes"`
}

type StoreConfig struct {
	// SeedFile is the YAML fixture loaded into the memory store.
	SeedFile string `koanf:"seedFile"`
}

type WebClientConfig struct {
	// AssetURI is a vfs location such as "file:///srv/console/".
	// Empty disables static serving.
	AssetURI string `koanf:"assetUri"`
}

// Config wraps a loaded koanf tree.
type Config struct {
	koanf *koanf.Koanf
}

func ReadFile(filename string) (*Config, error) {
	k := koanf.New(".")
	f := file.Provider(filename)
	if err := k.Load(f, toml.Parser()); err != nil {
		return nil, err
	}
	return &Config{koanf: k}, nil
}

func (c *Config) IsSet(key string) bool {
	return c.koanf.Exists(key)
}

func (c *Config) Unmarshal(key string, out interface{}) error {
	if err := c.koanf.Unmarshal(key, out); err != nil {
		return fmt.Errorf("cannot unmarshal config for key %q: %v", key, err)
	}
	return nil
}

// Watch reloads the file on change and pushes the logging sections into
// loggerfactory. Intended for the LoggerConfig file only; deployment
// changes require a restart.
func (c *Config) Watch(filename string) {
	f := file.Provider(filename)

	f.Watch(func(event interface{}, err error) {
		if err != nil {
			log.Printf("watch error: %v", err)
			return
		}
		log.Println("logger config changed. Reloading ...")
		newK := koanf.New(".")
		if err := newK.Load(f, toml.Parser()); err != nil {
			log.Printf("error loading new config: %v", err)
			return
		}
		c.koanf = newK
		applyLoggerConfig(c)
	})
}

// LoadDeployment reads deployment.toml from the conf directory and
// validates the required keys.
func LoadDeployment(confPath string) (Deployment, error) {
	cfg, err := ReadFile(filepath.Join(confPath, "deployment.toml"))
	if err != nil {
		return Deployment{}, fmt.Errorf("cannot read deployment config: %w", err)
	}

	var deployment Deployment
	if !cfg.IsSet("server") {
		return Deployment{}, fmt.Errorf("server configuration section is required in deployment.toml")
	}
	if err := cfg.Unmarshal("", &deployment); err != nil {
		return Deployment{}, err
	}
	if deployment.Server.Hostname == "" {
		return Deployment{}, fmt.Errorf("server hostname cannot be empty")
	}
	if deployment.Server.Offset < 0 {
		return Deployment{}, fmt.Errorf("server offset must be non-negative, got: %d", deployment.Server.Offset)
	}
	if deployment.Identity.Mode == "" {
		deployment.Identity.Mode = "local"
	}
	return deployment, nil
}

// InitLogging reads LoggerConfig.toml, applies it and starts watching it
// for changes.
func InitLogging(confPath string) error {
	configFilePath := filepath.Join(confPath, "LoggerConfig.toml")
	cfg, err := ReadFile(configFilePath)
	if err != nil {
		return fmt.Errorf("cannot read logger config: %w", err)
	}
	applyLoggerConfig(cfg)
	cfg.Watch(configFilePath)
	return nil
}

func applyLoggerConfig(cfg *Config) {
	var levels map[string]string
	var handlerConfig loggerfactory.HandlerConfig

	if cfg.IsSet("logger") {
		if err := cfg.Unmarshal("logger.handler", &handlerConfig); err != nil {
			log.Printf("error in logger.handler config: %v", err)
		}
		if err := cfg.Unmarshal("logger.level.components", &levels); err != nil {
			log.Printf("error in logger.level config: %v", err)
		}
	}

	cm := loggerfactory.GetConfigManager()
	cm.SetLevels(levels)
	cm.SetHandlerConfig(handlerConfig)
}
