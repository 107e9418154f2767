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
	"strings"
)

// RouteNotFoundError is returned by Href when the requested key was never
// registered. It signals a bug in the calling code, not a bad request.
type RouteNotFoundError struct {
	Key Key
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route registered for %s", e.Key)
}

// MissingParameterError is returned by Href when the supplied parameter map
// lacks one or more placeholders required by the route template.
type MissingParameterError struct {
	Key   Key
	Names []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter(s) %s building href for %s",
		strings.Join(e.Names, ", "), e.Key)
}

// UnknownParameterError is returned by Href when the supplied parameter map
// contains names that have no placeholder in the route template. It exists
// to catch typos in calling code before a wrong href ships to a client.
type UnknownParameterError struct {
	Key   Key
	Names []string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown parameter(s) %s building href for %s",
		strings.Join(e.Names, ", "), e.Key)
}

// ParamDecodeError is returned by Lookup when a captured path segment is not
// valid percent-encoding. It stems from untrusted request input and maps to
// a client error at the HTTP layer.
type ParamDecodeError struct {
	Name  string
	Value string
	Err   error
}

func (e *ParamDecodeError) Error() string {
	return fmt.Sprintf("cannot decode path parameter %q value %q: %v", e.Name, e.Value, e.Err)
}

func (e *ParamDecodeError) Unwrap() error {
	return e.Err
}
