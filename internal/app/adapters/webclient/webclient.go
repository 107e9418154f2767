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

// Package webclient serves the built React console bundle from a VFS
// location, so the same binary can ship assets from a local directory in
// development and from object storage in production.
package webclient

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/c2fo/vfs/v7"
	"github.com/c2fo/vfs/v7/vfssimple"

	"github.com/opsdeck/opsdeck/internal/pkg/loggerfactory"
)

const componentName = "webclient"

// Handler serves static files under a vfs.Location. Paths without a file
// extension fall back to index.html so the client-side router owns them.
type Handler struct {
	location vfs.Location
	logger   *slog.Logger
}

// New resolves the asset location from a URI such as "file:///srv/console/"
// or "s3://bucket/console/". The URI must end with a path separator.
func New(uri string) (*Handler, error) {
	if !strings.HasSuffix(uri, "/") {
		uri += "/"
	}
	location, err := vfssimple.NewLocation(uri)
	if err != nil {
		return nil, fmt.Errorf("resolving asset location %q: %w", uri, err)
	}
	h := &Handler{location: location}
	h.logger = loggerfactory.GetLogger(componentName, h)
	return h, nil
}

func (h *Handler) UpdateLogger() {
	h.logger = loggerfactory.GetLogger(componentName, h)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name == "" || name == "." || path.Ext(name) == "" {
		name = "index.html"
	}

	file, err := h.location.NewFile(name)
	if err != nil {
		h.logger.Error("Cannot resolve asset", slog.String("name", name), slog.String("error", err.Error()))
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	exists, err := file.Exists()
	if err != nil || !exists {
		http.NotFound(w, r)
		return
	}

	if ctype := mime.TypeByExtension(path.Ext(name)); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	if _, err := io.Copy(w, file); err != nil {
		h.logger.Error("Failed streaming asset", slog.String("name", name), slog.String("error", err.Error()))
	}
}
