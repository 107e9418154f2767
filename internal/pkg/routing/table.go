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

package routing

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Table is the route registry. Registration happens at startup; matching
// and href building are read operations. The sort of the underlying slice
// is performed lazily on first read after a mutation, under the write lock,
// so readers never observe a partially ordered table.
type Table struct {
	mu     sync.RWMutex
	routes []*Route
	byKey  map[Key]*Route
	sorted bool
}

// Match is the result of a successful lookup: the route that won and the
// decoded path parameters keyed by placeholder name.
type Match struct {
	Route  *Route
	Params map[string]string
}

func NewTable() *Table {
	return &Table{byKey: make(map[Key]*Route)}
}

// Register compiles the template and appends the route. Malformed templates,
// unknown methods and duplicate keys are registration-time errors: they
// indicate programming mistakes and must fail before traffic is served.
// Reverse routing needs exactly one route per key, so duplicates are
// rejected outright rather than resolved first-wins.
func (t *Table) Register(method, template string, key Key) error {
	if !allowedMethods[method] {
		return fmt.Errorf("unsupported method %q registering %s", method, key)
	}
	if key.Controller == "" || key.Operation == "" {
		return fmt.Errorf("route key for %q %q must have controller and operation", method, template)
	}

	pattern, names, specificity, err := compileTemplate(template)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if prior, ok := t.byKey[key]; ok {
		return fmt.Errorf("duplicate route key %s: already registered for %s %s",
			key, prior.Method, prior.Template)
	}

	route := &Route{
		Method:      method,
		Template:    template,
		Key:         key,
		pattern:     pattern,
		paramNames:  names,
		specificity: specificity,
	}
	t.routes = append(t.routes, route)
	t.byKey[key] = route
	t.sorted = false
	return nil
}

// ensureSorted orders the table by method (lexicographic) and, within a
// method, by descending specificity. The sort is stable so routes of equal
// specificity keep registration order. Idempotent between mutations.
func (t *Table) ensureSorted() {
	t.mu.RLock()
	sorted := t.sorted
	t.mu.RUnlock()
	if sorted {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sorted {
		return
	}
	sort.SliceStable(t.routes, func(i, j int) bool {
		if t.routes[i].Method != t.routes[j].Method {
			return t.routes[i].Method < t.routes[j].Method
		}
		return t.routes[i].specificity > t.routes[j].specificity
	})
	t.sorted = true
}

// Lookup finds the highest-specificity route matching method and path. The
// second return is false when nothing matched; that is the expected outcome
// for most of the table on most requests and is not an error. A non-nil
// error only reports malformed percent-encoding in a captured segment.
func (t *Table) Lookup(method, path string) (Match, bool, error) {
	t.ensureSorted()

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, route := range t.routes {
		if route.Method != method {
			continue
		}
		captures := route.pattern.FindStringSubmatch(path)
		if captures == nil {
			continue
		}

		params := make(map[string]string, len(route.paramNames))
		for i, name := range route.paramNames {
			raw := captures[i+1]
			decoded, err := url.PathUnescape(raw)
			if err != nil {
				return Match{}, false, &ParamDecodeError{Name: name, Value: raw, Err: err}
			}
			params[name] = decoded
		}
		return Match{Route: route, Params: params}, true, nil
	}
	return Match{}, false, nil
}

// Href rebuilds the literal path for the route registered under key,
// substituting the percent-encoded parameter values into the original
// template. Every placeholder must be supplied and every supplied name must
// be a placeholder; violations are hard failures because a silently wrong
// href embedded in a response is worse than a failed request.
func (t *Table) Href(key Key, params map[string]string) (string, error) {
	t.ensureSorted()

	t.mu.RLock()
	route, ok := t.byKey[key]
	t.mu.RUnlock()
	if !ok {
		return "", &RouteNotFoundError{Key: key}
	}

	var missing []string
	required := make(map[string]bool, len(route.paramNames))
	for _, name := range route.paramNames {
		required[name] = true
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &MissingParameterError{Key: key, Names: missing}
	}

	var unknown []string
	for name := range params {
		if !required[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return "", &UnknownParameterError{Key: key, Names: unknown}
	}

	href := route.Template
	for _, name := range route.paramNames {
		href = strings.Replace(href, "{"+name+"}", url.PathEscape(params[name]), 1)
	}

	// The pre-checks above make a leftover placeholder unreachable; this
	// guards the invariant anyway since the cost of a wrong href is high.
	if strings.Contains(href, "{") {
		return "", fmt.Errorf("unsubstituted placeholder left in href %q for %s", href, key)
	}
	return href, nil
}

// Routes returns the registered routes in sorted table order. Used by the
// catalog endpoint; the returned slice is a copy.
func (t *Table) Routes() []*Route {
	t.ensureSorted()

	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Route, len(t.routes))
	copy(out, t.routes)
	return out
}
