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

	"github.com/rs/cors"
)

// CORSConfig is the browser cross-origin policy for the API, loaded from
// the deployment configuration. The web client is served from the same
// origin by default, so CORS stays disabled unless configured.
type CORSConfig struct {
	Enabled          bool     `koanf:"enabled"`
	AllowOrigins     []string `koanf:"allowOrigins"`
	AllowMethods     []string `koanf:"allowMethods"`
	AllowHeaders     []string `koanf:"allowHeaders"`
	ExposeHeaders    []string `koanf:"exposeHeaders"`
	AllowCredentials bool     `koanf:"allowCredentials"`
	MaxAge           int      `koanf:"maxAge"`
}

// CORSMiddleware applies CORS headers based on the provided configuration
// using the rs/cors package. Preflight OPTIONS requests are answered by the
// middleware, so no OPTIONS routes are registered in the table.
func CORSMiddleware(handler http.Handler, config CORSConfig) http.Handler {
	if !config.Enabled {
		return handler
	}

	options := cors.Options{
		AllowedOrigins:   config.AllowOrigins,
		AllowedMethods:   config.AllowMethods,
		AllowedHeaders:   config.AllowHeaders,
		ExposedHeaders:   config.ExposeHeaders,
		AllowCredentials: config.AllowCredentials,
		MaxAge:           config.MaxAge,
	}

	return cors.New(options).Handler(handler)
}
