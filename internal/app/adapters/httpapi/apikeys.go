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
	"net/http"
	"time"

	"github.com/opsdeck/opsdeck/internal/app/core/domain"
	"github.com/opsdeck/opsdeck/internal/app/core/services"
	"github.com/opsdeck/opsdeck/internal/pkg/hal"
	"github.com/opsdeck/opsdeck/internal/pkg/routing"
)

type ApiKeysController struct {
	keys  *services.ApiKeyService
	table *routing.Table
}

func NewApiKeysController(keys *services.ApiKeyService, table *routing.Table) *ApiKeysController {
	return &ApiKeysController{keys: keys, table: table}
}

func (c *ApiKeysController) Name() string { return "ApiKeys" }

func (c *ApiKeysController) Endpoints() []Endpoint {
	return []Endpoint{
		{Method: "GET", Template: "/users/{userId}/keys", Operation: "list", Handler: c.list},
		{Method: "POST", Template: "/users/{userId}/keys", Operation: "create", Handler: c.create},
		{Method: "GET", Template: "/users/{userId}/keys/{keyId}", Operation: "get", Handler: c.get},
		{Method: "DELETE", Template: "/users/{userId}/keys/{keyId}", Operation: "delete", Handler: c.delete},
	}
}

func (c *ApiKeysController) list(w http.ResponseWriter, r *http.Request) error {
	userID := PathParam(r, "userId")
	keys, err := c.keys.List(r.Context(), userID)
	if err != nil {
		return err
	}

	params := map[string]string{"userId": userID}
	selfHref, err := c.table.Href(routing.Key{Controller: "ApiKeys", Operation: "list"}, params)
	if err != nil {
		return err
	}
	userHref, err := c.table.Href(routing.Key{Controller: "Users", Operation: "get"}, params)
	if err != nil {
		return err
	}

	doc := hal.NewDocument().
		Prop("total", len(keys)).
		Link("self", hal.Link{Href: selfHref}).
		Link("user", hal.Link{Href: userHref}).
		Template("create", hal.Template{
			Method:     "POST",
			Target:     selfHref,
			Title:      "Create API Key",
			Properties: []hal.Property{hal.Field("label", true)},
		})
	for _, key := range keys {
		item, err := c.keyDoc(key)
		if err != nil {
			return err
		}
		doc.Embed("keys", item)
	}
	return respond(w, r, http.StatusOK, "API Keys", doc)
}

func (c *ApiKeysController) get(w http.ResponseWriter, r *http.Request) error {
	key, err := c.keys.Get(r.Context(), PathParam(r, "userId"), PathParam(r, "keyId"))
	if err != nil {
		return err
	}
	doc, err := c.keyDoc(key)
	if err != nil {
		return err
	}
	return respond(w, r, http.StatusOK, "API Key "+key.Label, doc)
}

// create mints a key; the full secret appears in this response and nowhere
// else afterwards.
func (c *ApiKeysController) create(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Label string `json:"label"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	key, err := c.keys.Create(r.Context(), PathParam(r, "userId"), body.Label)
	if err != nil {
		return err
	}
	doc, err := c.keyDoc(key)
	if err != nil {
		return err
	}
	doc.Prop("secret", key.Secret)
	w.Header().Set("Location", doc.SelfHref())
	return respond(w, r, http.StatusCreated, "API Key "+key.Label, doc)
}

func (c *ApiKeysController) delete(w http.ResponseWriter, r *http.Request) error {
	if err := c.keys.Delete(r.Context(), PathParam(r, "userId"), PathParam(r, "keyId")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (c *ApiKeysController) keyDoc(key domain.ApiKey) (*hal.Document, error) {
	params := map[string]string{"userId": key.UserID, "keyId": key.ID}
	selfHref, err := c.table.Href(routing.Key{Controller: "ApiKeys", Operation: "get"}, params)
	if err != nil {
		return nil, err
	}
	userHref, err := c.table.Href(routing.Key{Controller: "Users", Operation: "get"},
		map[string]string{"userId": key.UserID})
	if err != nil {
		return nil, err
	}

	doc := hal.NewDocument().
		Prop("id", key.ID).
		Prop("label", key.Label).
		Prop("prefix", key.Prefix).
		Prop("createdAt", key.CreatedAt.Format(time.RFC3339)).
		Link("self", hal.Link{Href: selfHref}).
		Link("user", hal.Link{Href: userHref}).
		Template("delete", hal.Template{
			Method: "DELETE",
			Target: selfHref,
			Title:  "Delete API Key",
		})
	return doc, nil
}
