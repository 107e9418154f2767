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
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/opsdeck/opsdeck/internal/app/core/domain"
	"github.com/opsdeck/opsdeck/internal/app/core/services"
	"github.com/opsdeck/opsdeck/internal/pkg/hal"
	"github.com/opsdeck/opsdeck/internal/pkg/routing"
)

type UsersController struct {
	users    *services.UserService
	sessions *services.SessionService
	table    *routing.Table
}

func NewUsersController(users *services.UserService, sessions *services.SessionService, table *routing.Table) *UsersController {
	return &UsersController{users: users, sessions: sessions, table: table}
}

func (c *UsersController) Name() string { return "Users" }

func (c *UsersController) Endpoints() []Endpoint {
	return []Endpoint{
		{Method: "GET", Template: "/users", Operation: "list", Handler: c.list},
		{Method: "POST", Template: "/users", Operation: "create", Handler: c.create},
		{Method: "GET", Template: "/users/{userId}", Operation: "get", Handler: c.get},
		{Method: "PUT", Template: "/users/{userId}", Operation: "update", Handler: c.update},
		{Method: "DELETE", Template: "/users/{userId}", Operation: "delete", Handler: c.delete},
		{Method: "GET", Template: "/users/{userId}/sessions", Operation: "sessions", Handler: c.listSessions},
	}
}

func (c *UsersController) list(w http.ResponseWriter, r *http.Request) error {
	offset, limit := pageQuery(r)
	users, page, err := c.users.List(r.Context(), offset, limit)
	if err != nil {
		return err
	}

	listHref, err := c.table.Href(routing.Key{Controller: "Users", Operation: "list"}, nil)
	if err != nil {
		return err
	}

	doc := hal.NewDocument().
		Prop("total", page.Total).
		Prop("offset", page.Offset).
		Prop("limit", page.Limit)
	addPageLinks(doc, listHref, page)
	doc.Template("create", hal.Template{
		Method: "POST",
		Target: listHref,
		Title:  "Create User",
		Properties: []hal.Property{
			hal.Field("email", true),
			hal.Field("displayName", false),
			hal.Field("role", false),
		},
	})

	for _, user := range users {
		item, err := c.userDoc(user)
		if err != nil {
			return err
		}
		doc.Embed("users", item)
	}

	return respond(w, r, http.StatusOK, "Users", doc)
}

func (c *UsersController) get(w http.ResponseWriter, r *http.Request) error {
	user, err := c.users.Get(r.Context(), PathParam(r, "userId"))
	if err != nil {
		return err
	}
	doc, err := c.userDoc(user)
	if err != nil {
		return err
	}
	return respond(w, r, http.StatusOK, "User "+user.Email, doc)
}

func (c *UsersController) create(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Role        string `json:"role"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	user, err := c.users.Create(r.Context(), body.Email, body.DisplayName, body.Role)
	if err != nil {
		return err
	}
	doc, err := c.userDoc(user)
	if err != nil {
		return err
	}
	w.Header().Set("Location", doc.SelfHref())
	return respond(w, r, http.StatusCreated, "User "+user.Email, doc)
}

func (c *UsersController) update(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		DisplayName *string `json:"displayName"`
		Role        *string `json:"role"`
		Status      *string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	user, err := c.users.Update(r.Context(), PathParam(r, "userId"), body.DisplayName, body.Role, body.Status)
	if err != nil {
		return err
	}
	doc, err := c.userDoc(user)
	if err != nil {
		return err
	}
	return respond(w, r, http.StatusOK, "User "+user.Email, doc)
}

func (c *UsersController) delete(w http.ResponseWriter, r *http.Request) error {
	if err := c.users.Delete(r.Context(), PathParam(r, "userId")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (c *UsersController) listSessions(w http.ResponseWriter, r *http.Request) error {
	userID := PathParam(r, "userId")
	user, err := c.users.Get(r.Context(), userID)
	if err != nil {
		return err
	}
	sessions, err := c.sessions.ListForUser(r.Context(), userID)
	if err != nil {
		return err
	}

	selfHref, err := c.table.Href(routing.Key{Controller: "Users", Operation: "sessions"},
		map[string]string{"userId": userID})
	if err != nil {
		return err
	}
	userHref, err := c.table.Href(routing.Key{Controller: "Users", Operation: "get"},
		map[string]string{"userId": userID})
	if err != nil {
		return err
	}

	doc := hal.NewDocument().
		Prop("total", len(sessions)).
		Link("self", hal.Link{Href: selfHref}).
		Link("user", hal.Link{Href: userHref, Title: user.Email})
	for _, session := range sessions {
		item, err := sessionDoc(c.table, session)
		if err != nil {
			return err
		}
		doc.Embed("sessions", item)
	}
	return respond(w, r, http.StatusOK, "Sessions of "+user.Email, doc)
}

// userDoc shapes one user as a HAL resource. Every href comes out of the
// routing table.
func (c *UsersController) userDoc(user domain.User) (*hal.Document, error) {
	params := map[string]string{"userId": user.ID}

	selfHref, err := c.table.Href(routing.Key{Controller: "Users", Operation: "get"}, params)
	if err != nil {
		return nil, err
	}
	sessionsHref, err := c.table.Href(routing.Key{Controller: "Users", Operation: "sessions"}, params)
	if err != nil {
		return nil, err
	}
	keysHref, err := c.table.Href(routing.Key{Controller: "ApiKeys", Operation: "list"}, params)
	if err != nil {
		return nil, err
	}

	doc := hal.NewDocument().
		Prop("id", user.ID).
		Prop("email", user.Email).
		Prop("displayName", user.DisplayName).
		Prop("role", user.Role).
		Prop("status", user.Status).
		Prop("createdAt", user.CreatedAt.Format(time.RFC3339)).
		Prop("updatedAt", user.UpdatedAt.Format(time.RFC3339)).
		Link("self", hal.Link{Href: selfHref}).
		Link("sessions", hal.Link{Href: sessionsHref, Title: "Sessions"}).
		Link("keys", hal.Link{Href: keysHref, Title: "API Keys"}).
		Template("update", hal.Template{
			Method: "PUT",
			Target: selfHref,
			Title:  "Update User",
			Properties: []hal.Property{
				hal.Field("displayName", false),
				hal.Field("role", false),
				hal.Field("status", false),
			},
		}).
		Template("delete", hal.Template{
			Method: "DELETE",
			Target: selfHref,
			Title:  "Delete User",
		})
	return doc, nil
}

// pageQuery reads offset/limit from the query string; bad values fall back
// to defaults rather than erroring, matching common console UX.
func pageQuery(r *http.Request) (int, int) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return offset, limit
}

// addPageLinks attaches self/next/prev collection links. The base href is
// reverse-routed by the caller; only the query string is appended here.
func addPageLinks(doc *hal.Document, baseHref string, page domain.Page) {
	doc.Link("self", hal.Link{Href: pagedHref(baseHref, page.Offset, page.Limit)})
	if page.Offset+page.Limit < page.Total {
		doc.Link("next", hal.Link{Href: pagedHref(baseHref, page.Offset+page.Limit, page.Limit)})
	}
	if page.Offset > 0 {
		prev := page.Offset - page.Limit
		if prev < 0 {
			prev = 0
		}
		doc.Link("prev", hal.Link{Href: pagedHref(baseHref, prev, page.Limit)})
	}
}

func pagedHref(baseHref string, offset, limit int) string {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	return baseHref + "?" + q.Encode()
}

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return &services.ValidationError{Field: "body", Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return nil
}
