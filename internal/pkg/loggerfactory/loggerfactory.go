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

// Package loggerfactory hands out slog loggers with per-component levels
// driven by configuration. Components implementing LoggerUser are notified
// when the logging configuration is reloaded so they can re-fetch their
// logger.
package loggerfactory

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LoggerUser is implemented by components that cache a logger and need to
// refresh it after a configuration reload.
type LoggerUser interface {
	UpdateLogger()
}

// HandlerConfig selects the slog handler backing all loggers.
// format: json or text; outputPath: stdout or stderr.
type HandlerConfig struct {
	Format     string `koanf:"format"`
	OutputPath string `koanf:"outputPath"`
}

// ConfigManager holds the level map and handler config and tracks the
// components that requested loggers.
type ConfigManager struct {
	mu            sync.RWMutex
	levels        map[string]string
	handlerConfig HandlerConfig
	registered    map[string]LoggerUser
}

var (
	configManagerInstance *ConfigManager
	once                  sync.Once
)

func GetConfigManager() *ConfigManager {
	once.Do(func() {
		configManagerInstance = &ConfigManager{
			levels:     make(map[string]string),
			registered: make(map[string]LoggerUser),
		}
	})
	return configManagerInstance
}

// SetLevels replaces the component level map and notifies every registered
// component outside the lock.
func (cm *ConfigManager) SetLevels(levels map[string]string) {
	cm.mu.Lock()
	if levels == nil {
		levels = make(map[string]string)
	}
	cm.levels = levels
	toNotify := make([]LoggerUser, 0, len(cm.registered))
	for _, component := range cm.registered {
		toNotify = append(toNotify, component)
	}
	cm.mu.Unlock()

	// Notify after releasing the lock; UpdateLogger calls back into
	// GetLogger.
	for _, component := range toNotify {
		component.UpdateLogger()
	}
}

// SetHandlerConfig replaces the handler configuration and notifies every
// registered component outside the lock.
func (cm *ConfigManager) SetHandlerConfig(config HandlerConfig) {
	cm.mu.Lock()
	cm.handlerConfig = config
	toNotify := make([]LoggerUser, 0, len(cm.registered))
	for _, component := range cm.registered {
		toNotify = append(toNotify, component)
	}
	cm.mu.Unlock()

	for _, component := range toNotify {
		component.UpdateLogger()
	}
}

func (cm *ConfigManager) levelFor(component string) slog.Leveler {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if levelStr, ok := cm.levels[component]; ok {
		return LevelFromString(levelStr)
	}
	if levelStr, ok := cm.levels["default"]; ok {
		return LevelFromString(levelStr)
	}
	return slog.LevelInfo
}

func (cm *ConfigManager) register(component string, user LoggerUser) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if _, ok := cm.registered[component]; !ok {
		cm.registered[component] = user
	}
}

func (cm *ConfigManager) newHandler() slog.Handler {
	cm.mu.RLock()
	config := cm.handlerConfig
	cm.mu.RUnlock()

	out := os.Stdout
	if config.OutputPath == "stderr" {
		out = os.Stderr
	}
	if config.Format == "text" {
		return slog.NewTextHandler(out, nil)
	}
	return slog.NewJSONHandler(out, nil)
}

// GetLogger returns a logger for the component, registering it for reload
// notifications when it implements LoggerUser.
func GetLogger(component string, owner interface{}) *slog.Logger {
	cm := GetConfigManager()
	if user, ok := owner.(LoggerUser); ok {
		cm.register(component, user)
	}
	return slog.New(NewLevelHandler(cm.levelFor(component), cm.newHandler()))
}

// LevelFromString converts a level name to a slog.Leveler, defaulting to
// info for unknown values.
func LevelFromString(levelStr string) slog.Leveler {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// A LevelHandler wraps a Handler with an Enabled method that returns false
// for levels below a minimum.
type LevelHandler struct {
	level   slog.Leveler
	handler slog.Handler
}

// NewLevelHandler returns a LevelHandler with the given level. All methods
// except Enabled delegate to h.
func NewLevelHandler(level slog.Leveler, h slog.Handler) *LevelHandler {
	if lh, ok := h.(*LevelHandler); ok {
		h = lh.handler
	}
	return &LevelHandler{level, h}
}

func (h *LevelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LevelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler.Handle(ctx, r)
}

func (h *LevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewLevelHandler(h.level, h.handler.WithAttrs(attrs))
}

func (h *LevelHandler) WithGroup(name string) slog.Handler {
	return NewLevelHandler(h.level, h.handler.WithGroup(name))
}
