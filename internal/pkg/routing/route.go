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

// Package routing implements the route registry used by the HTTP API:
// declarative registration of method + path templates, specificity-ordered
// request matching, and reverse lookup of an exact path from an operation
// key and its parameters. All hypermedia hrefs in the API are produced
// through this package, never hand-formatted.
package routing

import (
	"fmt"
	"regexp"
	"strings"
)

// Methods accepted at registration time.
var allowedMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"HEAD":    true,
	"OPTIONS": true,
}

// Key identifies the (controller, operation) pair owning a route. It is an
// explicit, stable value chosen at registration time so it can be logged,
// compared and used for reverse lookup without any reflection.
type Key struct {
	Controller string
	Operation  string
}

func (k Key) String() string {
	return k.Controller + "." + k.Operation
}

// Route is one registered endpoint. The compiled pattern and parameter
// order are derived once from the template and never change afterwards.
type Route struct {
	Method   string
	Template string
	Key      Key

	pattern     *regexp.Regexp
	paramNames  []string
	specificity int
}

// ParamNames returns the placeholder names in template order.
func (r *Route) ParamNames() []string {
	out := make([]string, len(r.paramNames))
	copy(out, r.paramNames)
	return out
}

// Specificity is the number of literal path segments in the template.
func (r *Route) Specificity() int {
	return r.specificity
}

// compileTemplate turns a path template like "/users/{userId}/keys/{keyId}"
// into an anchored regexp, the ordered placeholder names and the
// specificity score. Placeholders match exactly one path segment; every
// other character is matched literally.
func compileTemplate(template string) (*regexp.Regexp, []string, int, error) {
	if template == "" || template[0] != '/' {
		return nil, nil, 0, fmt.Errorf("path template %q must begin with '/'", template)
	}

	var expr strings.Builder
	var names []string
	expr.WriteString("^")

	for i := 0; i < len(template); {
		c := template[i]
		switch c {
		case '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return nil, nil, 0, fmt.Errorf("path template %q has an unclosed '{'", template)
			}
			name := template[i+1 : i+end]
			if name == "" {
				return nil, nil, 0, fmt.Errorf("path template %q has an empty placeholder", template)
			}
			if strings.ContainsAny(name, "{/") {
				return nil, nil, 0, fmt.Errorf("path template %q has a malformed placeholder %q", template, name)
			}
			names = append(names, name)
			expr.WriteString("([^/]+)")
			i += end + 1
		case '}':
			return nil, nil, 0, fmt.Errorf("path template %q has an unmatched '}'", template)
		default:
			expr.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	expr.WriteString("$")

	pattern, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, nil, 0, fmt.Errorf("cannot compile path template %q: %w", template, err)
	}

	specificity := 0
	for _, segment := range strings.Split(template, "/") {
		if segment != "" && !strings.HasPrefix(segment, "{") {
			specificity++
		}
	}

	return pattern, names, specificity, nil
}
