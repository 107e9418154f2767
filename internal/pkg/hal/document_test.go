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

package hal

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_MarshalJSON(t *testing.T) {
	doc := NewDocument().
		Prop("id", "u1").
		Prop("email", "jane@example.com").
		Link("self", Link{Href: "/users/u1"}).
		Link("sessions", Link{Href: "/users/u1/sessions", Title: "Sessions"}).
		Template("update", Template{
			Method: "PUT",
			Target: "/users/u1",
			Properties: []Property{
				Field("email", true),
				Field("displayName", false),
			},
		})
	doc.Embed("keys", NewDocument().Prop("id", "k1").Link("self", Link{Href: "/users/u1/keys/k1"}))

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))

	assert.Equal(t, "u1", parsed["id"])
	assert.Equal(t, "jane@example.com", parsed["email"])

	links := parsed["_links"].(map[string]any)
	self := links["self"].(map[string]any)
	assert.Equal(t, "/users/u1", self["href"])
	sessions := links["sessions"].(map[string]any)
	assert.Equal(t, "Sessions", sessions["title"])

	embedded := parsed["_embedded"].(map[string]any)
	keys := embedded["keys"].([]any)
	require.Len(t, keys, 1)

	templates := parsed["_templates"].(map[string]any)
	update := templates["update"].(map[string]any)
	assert.Equal(t, "PUT", update["method"])
	props := update["properties"].([]any)
	require.Len(t, props, 2)
	first := props[0].(map[string]any)
	assert.Equal(t, "email", first["name"])
	assert.Equal(t, true, first["required"])
}

func TestDocument_PropertyOrderIsStable(t *testing.T) {
	doc := NewDocument().
		Prop("zeta", 1).
		Prop("alpha", 2).
		Prop("mid", 3)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	s := string(raw)
	assert.Less(t, strings.Index(s, `"zeta"`), strings.Index(s, `"alpha"`))
	assert.Less(t, strings.Index(s, `"alpha"`), strings.Index(s, `"mid"`))
}

func TestDocument_EmptySectionsOmitted(t *testing.T) {
	raw, err := json.Marshal(NewDocument().Prop("ok", true))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(raw))
}

func TestPrompt(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		expected string
	}{
		{"single word", "email", "Email"},
		{"camel case", "displayName", "Display Name"},
		{"id suffix", "userId", "User Id"},
		{"already capitalized", "Label", "Label"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Prompt(tc.in))
		})
	}
}

func TestRenderXHTML(t *testing.T) {
	doc := NewDocument().
		Prop("id", "u1").
		Link("self", Link{Href: "/users/u1"}).
		Template("update", Template{
			Method:     "PUT",
			Target:     "/users/u1",
			Properties: []Property{Field("email", true)},
		})

	out := RenderXHTML(doc, "User u1")

	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `href="/users/u1"`)
	assert.Contains(t, out, "User u1")
	assert.Contains(t, out, `name="email"`)
	assert.Contains(t, out, "<form")
}
