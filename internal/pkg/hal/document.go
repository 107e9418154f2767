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

// Package hal models HAL and HAL-FORMS documents: resource state plus
// _links, _embedded and _templates sections. Documents are built by the
// HTTP adapters and rendered either as application/hal+json or as XHTML.
package hal

import (
	"encoding/json"
	"fmt"
)

const (
	// MediaTypeJSON is the wire content type of the JSON rendering.
	MediaTypeJSON = "application/hal+json"
	// MediaTypeXHTML is the wire content type of the XHTML rendering.
	MediaTypeXHTML = "application/xhtml+xml"
)

// Link is one entry of a _links section.
type Link struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Document is a HAL resource. Property insertion order is preserved in the
// JSON output so documents render deterministically.
type Document struct {
	propOrder []string
	props     map[string]any

	links     map[string]Link
	linkOrder []string

	embedded      map[string][]*Document
	embeddedOrder []string

	templates     map[string]Template
	templateOrder []string
}

func NewDocument() *Document {
	return &Document{
		props:     make(map[string]any),
		links:     make(map[string]Link),
		embedded:  make(map[string][]*Document),
		templates: make(map[string]Template),
	}
}

// Prop sets a state property. Setting an existing name overwrites the value
// but keeps the original position.
func (d *Document) Prop(name string, value any) *Document {
	if _, ok := d.props[name]; !ok {
		d.propOrder = append(d.propOrder, name)
	}
	d.props[name] = value
	return d
}

// Link adds a _links entry under the given relation.
func (d *Document) Link(rel string, link Link) *Document {
	if _, ok := d.links[rel]; !ok {
		d.linkOrder = append(d.linkOrder, rel)
	}
	d.links[rel] = link
	return d
}

// Embed appends a document to the _embedded list for the given relation.
func (d *Document) Embed(rel string, doc *Document) *Document {
	if _, ok := d.embedded[rel]; !ok {
		d.embeddedOrder = append(d.embeddedOrder, rel)
	}
	d.embedded[rel] = append(d.embedded[rel], doc)
	return d
}

// Template adds a HAL-FORMS _templates entry under the given name.
func (d *Document) Template(name string, tpl Template) *Document {
	if _, ok := d.templates[name]; !ok {
		d.templateOrder = append(d.templateOrder, name)
	}
	d.templates[name] = tpl
	return d
}

// SelfHref returns the href of the self link, empty if absent.
func (d *Document) SelfHref() string {
	return d.links["self"].Href
}

// Links returns the relations in insertion order with their links.
func (d *Document) Links() []struct {
	Rel  string
	Link Link
} {
	out := make([]struct {
		Rel  string
		Link Link
	}, 0, len(d.linkOrder))
	for _, rel := range d.linkOrder {
		out = append(out, struct {
			Rel  string
			Link Link
		}{rel, d.links[rel]})
	}
	return out
}

// MarshalJSON renders state properties in insertion order, then _links,
// _embedded and _templates in that order.
func (d *Document) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	first := true

	writeField := func(name string, value any) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("cannot marshal field %q: %w", name, err)
		}
		if !first {
			buf = append(buf, ',')
		}
		first = false
		nameRaw, _ := json.Marshal(name)
		buf = append(buf, nameRaw...)
		buf = append(buf, ':')
		buf = append(buf, raw...)
		return nil
	}

	for _, name := range d.propOrder {
		if err := writeField(name, d.props[name]); err != nil {
			return nil, err
		}
	}
	if len(d.linkOrder) > 0 {
		if err := writeField("_links", orderedMap(d.linkOrder, d.links)); err != nil {
			return nil, err
		}
	}
	if len(d.embeddedOrder) > 0 {
		if err := writeField("_embedded", orderedMap(d.embeddedOrder, d.embedded)); err != nil {
			return nil, err
		}
	}
	if len(d.templateOrder) > 0 {
		if err := writeField("_templates", orderedMap(d.templateOrder, d.templates)); err != nil {
			return nil, err
		}
	}

	return append(buf, '}'), nil
}

// orderedMap is a json.Marshaler emitting map entries in a fixed key order.
type orderedJSON[V any] struct {
	order  []string
	values map[string]V
}

func orderedMap[V any](order []string, values map[string]V) json.Marshaler {
	return orderedJSON[V]{order: order, values: values}
}

func (o orderedJSON[V]) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, name := range o.order {
		if i > 0 {
			buf = append(buf, ',')
		}
		nameRaw, _ := json.Marshal(name)
		raw, err := json.Marshal(o.values[name])
		if err != nil {
			return nil, err
		}
		buf = append(buf, nameRaw...)
		buf = append(buf, ':')
		buf = append(buf, raw...)
	}
	return append(buf, '}'), nil
}
