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

	"gopkg.in/yaml.v2"

	"github.com/opsdeck/opsdeck/internal/pkg/routing"
)

// CatalogController publishes the route registry itself: every registered
// operation with its method, template and parameter names, generated
// straight from the routing table so it can never drift from what actually
// dispatches. JSON by default, YAML via ?format=yaml.
type CatalogController struct {
	table *routing.Table
}

func NewCatalogController(table *routing.Table) *CatalogController {
	return &CatalogController{table: table}
}

func (c *CatalogController) Name() string { return "Catalog" }

func (c *CatalogController) Endpoints() []Endpoint {
	return []Endpoint{
		{Method: "GET", Template: "/catalog", Operation: "get", Handler: c.get, Public: true},
	}
}

type catalogEntry struct {
	Operation   string   `json:"operation" yaml:"operation"`
	Method      string   `json:"method" yaml:"method"`
	Path        string   `json:"path" yaml:"path"`
	Params      []string `json:"params,omitempty" yaml:"params,omitempty"`
	Specificity int      `json:"specificity" yaml:"specificity"`
}

func (c *CatalogController) get(w http.ResponseWriter, r *http.Request) error {
	entries := make([]catalogEntry, 0)
	for _, route := range c.table.Routes() {
		entries = append(entries, catalogEntry{
			Operation:   route.Key.String(),
			Method:      route.Method,
			Path:        route.Template,
			Params:      route.ParamNames(),
			Specificity: route.Specificity(),
		})
	}
	catalog := map[string]interface{}{"routes": entries}

	if r.URL.Query().Get("format") == "yaml" {
		raw, err := yaml.Marshal(catalog)
		if err != nil {
			return fmt.Errorf("marshaling catalog to YAML: %w", err)
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, err = w.Write(raw)
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(catalog)
}
