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

// Package httpapi is the HTTP adapter of the admin console: it aggregates
// controller endpoint declarations into the routing table, dispatches
// incoming requests through it and serializes HAL responses. Path
// parameters reach handlers through the request context, and every href in
// a response is rebuilt from the routing table.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/opsdeck/opsdeck/internal/app/adapters/identity"
	"github.com/opsdeck/opsdeck/internal/app/core/domain"
	"github.com/opsdeck/opsdeck/internal/app/core/services"
	"github.com/opsdeck/opsdeck/internal/pkg/hal"
	"github.com/opsdeck/opsdeck/internal/pkg/loggerfactory"
	"github.com/opsdeck/opsdeck/internal/pkg/routing"
)

const componentName = "httpapi"

// HandlerFunc is the controller operation signature. Returned errors are
// classified centrally; see writeFailure.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Endpoint is one declared operation of a controller: the route template,
// the operation name forming the routing key together with the controller
// name, and the handler. Public endpoints skip bearer authentication.
type Endpoint struct {
	Method    string
	Template  string
	Operation string
	Handler   HandlerFunc
	Public    bool
}

// Controller is the registration surface: a name and a static list of
// endpoint declarations the server aggregates into the routing table.
type Controller interface {
	Name() string
	Endpoints() []Endpoint
}

type registered struct {
	handler HandlerFunc
	public  bool
}

// Server dispatches requests over the routing table and manages the
// http.Server lifecycle.
type Server struct {
	server   *http.Server
	table    *routing.Table
	handlers map[routing.Key]registered
	auth     identity.Provider
	assets   http.Handler
	port     string // ":8470"
	hostname string
	cors     CORSConfig
	logger   *slog.Logger
}

func NewServer(port, hostname string, auth identity.Provider, cors CORSConfig) *Server {
	s := &Server{
		table:    routing.NewTable(),
		handlers: make(map[routing.Key]registered),
		auth:     auth,
		port:     port,
		hostname: hostname,
		cors:     cors,
	}
	s.logger = loggerfactory.GetLogger(componentName, s)
	return s
}

func (s *Server) UpdateLogger() {
	s.logger = loggerfactory.GetLogger(componentName, s)
}

// Table exposes the routing table so controllers can reverse-route hrefs.
func (s *Server) Table() *routing.Table {
	return s.table
}

// SetAssets installs the static handler consulted when no API route
// matches a GET request; used to serve the web client bundle.
func (s *Server) SetAssets(h http.Handler) {
	s.assets = h
}

// RegisterController adds every endpoint the controller declares.
// Registration errors are startup errors; nothing is served until all
// controllers registered cleanly.
func (s *Server) RegisterController(c Controller) error {
	for _, ep := range c.Endpoints() {
		key := routing.Key{Controller: c.Name(), Operation: ep.Operation}
		if err := s.table.Register(ep.Method, ep.Template, key); err != nil {
			return err
		}
		s.handlers[key] = registered{handler: ep.Handler, public: ep.Public}
		s.logger.Info("Registered route",
			slog.String("key", key.String()),
			slog.String("pattern", ep.Method+" "+ep.Template))
	}
	return nil
}

type contextKey int

const (
	paramsContextKey contextKey = iota
	sessionContextKey
)

// PathParams returns the decoded path parameters extracted during dispatch.
func PathParams(r *http.Request) map[string]string {
	params, _ := r.Context().Value(paramsContextKey).(map[string]string)
	return params
}

// PathParam returns one decoded path parameter.
func PathParam(r *http.Request, name string) string {
	return PathParams(r)[name]
}

// SessionFrom returns the authenticated session, if dispatch went through
// the bearer check.
func SessionFrom(r *http.Request) (domain.Session, bool) {
	session, ok := r.Context().Value(sessionContextKey).(domain.Session)
	return session, ok
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	match, ok, err := s.table.Lookup(r.Method, r.URL.EscapedPath())
	if err != nil {
		var decodeErr *routing.ParamDecodeError
		if errors.As(err, &decodeErr) {
			s.writeProblem(w, r, http.StatusBadRequest, "malformed path parameter: "+decodeErr.Name)
			return
		}
		s.logger.Error("Route lookup failed", slog.String("error", err.Error()))
		s.writeProblem(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		// Unmatched GETs fall through to the web client bundle so the
		// browser app can own its own routes.
		if s.assets != nil && r.Method == http.MethodGet {
			s.assets.ServeHTTP(w, r)
			return
		}
		s.writeProblem(w, r, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path)
		return
	}

	reg := s.handlers[match.Route.Key]

	ctx := context.WithValue(r.Context(), paramsContextKey, match.Params)
	if !reg.public {
		session, err := s.authenticate(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="opsdeck"`)
			s.writeProblem(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx = context.WithValue(ctx, sessionContextKey, session)
	}
	r = r.WithContext(ctx)

	if err := reg.handler(w, r); err != nil {
		s.writeFailure(w, r, match.Route.Key, err)
	}
}

func (s *Server) authenticate(r *http.Request) (domain.Session, error) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return domain.Session{}, identity.ErrTokenInvalid
	}
	return s.auth.Verify(r.Context(), strings.TrimSpace(token))
}

// writeFailure maps handler errors onto HAL problem responses. Reverse
// routing failures are programmer errors and surface as 500s, never as a
// silently wrong link.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, key routing.Key, err error) {
	var validation *services.ValidationError
	var notFound *routing.RouteNotFoundError
	var missing *routing.MissingParameterError
	var unknown *routing.UnknownParameterError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeProblem(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		s.writeProblem(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, identity.ErrBadCredentials):
		s.writeProblem(w, r, http.StatusUnauthorized, err.Error())
	case errors.As(err, &validation):
		s.writeProblem(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &notFound), errors.As(err, &missing), errors.As(err, &unknown):
		s.logger.Error("Reverse routing failed",
			slog.String("key", key.String()),
			slog.String("error", err.Error()))
		s.writeProblem(w, r, http.StatusInternalServerError, "internal error")
	default:
		s.logger.Error("Handler failed",
			slog.String("key", key.String()),
			slog.String("error", err.Error()))
		s.writeProblem(w, r, http.StatusInternalServerError, "internal error")
	}
}

// wantsXHTML inspects the Accept header; the JSON rendering is the default.
func wantsXHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "xhtml") || strings.Contains(accept, "text/html")
}

// respond writes a document in the negotiated representation.
func respond(w http.ResponseWriter, r *http.Request, status int, title string, doc *hal.Document) error {
	if wantsXHTML(r) {
		w.Header().Set("Content-Type", hal.MediaTypeXHTML+"; charset=utf-8")
		w.WriteHeader(status)
		_, err := w.Write([]byte(hal.RenderXHTML(doc, title)))
		return err
	}
	raw, err := doc.MarshalJSON()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", hal.MediaTypeJSON+"; charset=utf-8")
	w.WriteHeader(status)
	_, err = w.Write(raw)
	return err
}

func (s *Server) writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	doc := hal.NewDocument().
		Prop("status", status).
		Prop("detail", detail)
	if err := respond(w, r, status, http.StatusText(status), doc); err != nil {
		s.logger.Error("Failed writing problem response", slog.String("error", err.Error()))
	}
}

// StartServer starts serving in the background; CORS wraps the whole API.
func (s *Server) StartServer(ctx context.Context) {
	addr := s.hostname + s.port
	s.server = &http.Server{
		Addr:    addr,
		Handler: CORSMiddleware(s, s.cors),
	}

	go func() {
		s.logger.Info("Starting HTTP server", "address", addr)
		if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
		s.logger.Info("HTTP server stopped serving new connections")
	}()
}

func (s *Server) StopServer() {
	if s.server != nil {
		s.logger.Info("Shutting down HTTP server...")
		shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownRelease()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Error shutting down HTTP server", "error", err.Error())
		}
	}
}
