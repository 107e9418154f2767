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

package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/opsdeck/opsdeck/internal/pkg/hal"
	"github.com/opsdeck/opsdeck/internal/pkg/routing"
)

// RootController serves the API entry document: the links a client needs to
// discover everything else, plus the login template. HATEOAS clients start
// here and never hard-code another URL.
type RootController struct {
	table *routing.Table
}

func NewRootController(table *routing.Table) *RootController {
	return &RootController{table: table}
}

func (c *RootController) Name() string { return "Root" }

func (c *RootController) Endpoints() []Endpoint {
	return []Endpoint{
		{Method: "GET", Template: "/api", Operation: "get", Handler: c.get, Public: true},
		{Method: "GET", Template: "/livez", Operation: "livez", Handler: c.livez, Public: true},
	}
}

func (c *RootController) get(w http.ResponseWriter, r *http.Request) error {
	href := func(controller, operation string) (string, error) {
		return c.table.Href(routing.Key{Controller: controller, Operation: operation}, nil)
	}

	selfHref, err := href("Root", "get")
	if err != nil {
		return err
	}
	usersHref, err := href("Users", "list")
	if err != nil {
		return err
	}
	sessionsHref, err := href("Sessions", "list")
	if err != nil {
		return err
	}
	loginHref, err := href("Sessions", "create")
	if err != nil {
		return err
	}
	catalogHref, err := href("Catalog", "get")
	if err != nil {
		return err
	}

	doc := hal.NewDocument().
		Prop("name", "opsdeck").
		Prop("version", "1").
		Link("self", hal.Link{Href: selfHref}).
		Link("users", hal.Link{Href: usersHref, Title: "Users"}).
		Link("sessions", hal.Link{Href: sessionsHref, Title: "Sessions"}).
		Link("catalog", hal.Link{Href: catalogHref, Title: "Route Catalog"}).
		Template("login", hal.Template{
			Method: "POST",
			Target: loginHref,
			Title:  "Log In",
			Properties: []hal.Property{
				hal.Field("email", true),
				hal.Field("password", true),
			},
		})
	return respond(w, r, http.StatusOK, "Opsdeck Admin API", doc)
}

// livez is the liveness probe.
func (c *RootController) livez(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "UP",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
