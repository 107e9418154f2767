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
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Template is one HAL-FORMS _templates entry describing a write operation.
type Template struct {
	Method     string     `json:"method"`
	Target     string     `json:"target,omitempty"`
	Title      string     `json:"title,omitempty"`
	Properties []Property `json:"properties,omitempty"`
}

// Property describes one expected field of a form template.
type Property struct {
	Name     string `json:"name"`
	Prompt   string `json:"prompt,omitempty"`
	Required bool   `json:"required,omitempty"`
	ReadOnly bool   `json:"readOnly,omitempty"`
}

var titleCaser = cases.Title(language.English)

// Field builds a Property with a human prompt derived from the camelCase
// field name, e.g. "displayName" becomes "Display Name".
func Field(name string, required bool) Property {
	return Property{Name: name, Prompt: Prompt(name), Required: required}
}

// Prompt splits a camelCase identifier into words and title-cases them.
func Prompt(name string) string {
	var words []string
	var current strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) && current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return titleCaser.String(strings.Join(words, " "))
}
