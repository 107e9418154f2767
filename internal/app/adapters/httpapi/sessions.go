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

	"github.com/opsdeck/opsdeck/internal/app/adapters/identity"
	"github.com/opsdeck/opsdeck/internal/app/core/domain"
	"github.com/opsdeck/opsdeck/internal/app/core/services"
	"github.com/opsdeck/opsdeck/internal/pkg/hal"
	"github.com/opsdeck/opsdeck/internal/pkg/routing"
)

type SessionsController struct {
	sessions *services.SessionService
	auth     identity.Provider
	table    *routing.Table
}

func NewSessionsController(sessions *services.SessionService, auth identity.Provider, table *routing.Table) *SessionsController {
	return &SessionsController{sessions: sessions, auth: auth, table: table}
}

func (c *SessionsController) Name() string { return "Sessions" }

func (c *SessionsController) Endpoints() []Endpoint {
	return []Endpoint{
		{Method: "GET", Template: "/sessions", Operation: "list", Handler: c.list},
		// login is the one unauthenticated write: it mints the session
		{Method: "POST", Template: "/sessions", Operation: "create", Handler: c.create, Public: true},
		{Method: "GET", Template: "/sessions/{sessionId}", Operation: "get", Handler: c.get},
		{Method: "DELETE", Template: "/sessions/{sessionId}", Operation: "revoke", Handler: c.revoke},
	}
}

func (c *SessionsController) list(w http.ResponseWriter, r *http.Request) error {
	offset, limit := pageQuery(r)
	sessions, page, err := c.sessions.List(r.Context(), offset, limit)
	if err != nil {
		return err
	}

	listHref, err := c.table.Href(routing.Key{Controller: "Sessions", Operation: "list"}, nil)
	if err != nil {
		return err
	}

	doc := hal.NewDocument().
		Prop("total", page.Total).
		Prop("offset", page.Offset).
		Prop("limit", page.Limit)
	addPageLinks(doc, listHref, page)

	for _, session := range sessions {
		item, err := sessionDoc(c.table, session)
		if err != nil {
			return err
		}
		doc.Embed("sessions", item)
	}
	return respond(w, r, http.StatusOK, "Sessions", doc)
}

func (c *SessionsController) get(w http.ResponseWriter, r *http.Request) error {
	session, err := c.sessions.Get(r.Context(), PathParam(r, "sessionId"))
	if err != nil {
		return err
	}
	doc, err := sessionDoc(c.table, session)
	if err != nil {
		return err
	}
	return respond(w, r, http.StatusOK, "Session "+session.ID, doc)
}

// create is the login operation: it federates the credential check to the
// identity provider and returns the fresh session including its bearer
// token. This is the only response ever carrying the token.
func (c *SessionsController) create(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	if body.Email == "" || body.Password == "" {
		return &services.ValidationError{Field: "credentials", Reason: "email and password are required"}
	}

	session, err := c.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		return err
	}

	doc, err := sessionDoc(c.table, session)
	if err != nil {
		return err
	}
	doc.Prop("token", session.Token)
	w.Header().Set("Location", doc.SelfHref())
	return respond(w, r, http.StatusCreated, "Session "+session.ID, doc)
}

func (c *SessionsController) revoke(w http.ResponseWriter, r *http.Request) error {
	if err := c.sessions.Revoke(r.Context(), PathParam(r, "sessionId")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// sessionDoc shapes one session as a HAL resource. The bearer token is
// deliberately absent; login adds it to its own response only.
func sessionDoc(table *routing.Table, session domain.Session) (*hal.Document, error) {
	selfHref, err := table.Href(routing.Key{Controller: "Sessions", Operation: "get"},
		map[string]string{"sessionId": session.ID})
	if err != nil {
		return nil, err
	}
	userHref, err := table.Href(routing.Key{Controller: "Users", Operation: "get"},
		map[string]string{"userId": session.UserID})
	if err != nil {
		return nil, err
	}

	doc := hal.NewDocument().
		Prop("id", session.ID).
		Prop("userId", session.UserID).
		Prop("issuedAt", session.IssuedAt.Format(time.RFC3339)).
		Prop("expiresAt", session.ExpiresAt.Format(time.RFC3339)).
		Prop("revoked", session.Revoked).
		Link("self", hal.Link{Href: selfHref}).
		Link("user", hal.Link{Href: userHref}).
		Template("revoke", hal.Template{
			Method: "DELETE",
			Target: selfHref,
			Title:  "Revoke Session",
		})
	return doc, nil
}
