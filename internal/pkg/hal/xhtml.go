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
	"fmt"
	"strings"

	"github.com/rohanthewiz/element"
)

// RenderXHTML renders a document as a navigable XHTML page: properties as
// labeled paragraphs, _links as anchors, _embedded resources as nested
// sections and _templates as forms. It is the human-browsable rendering of
// the same hypermedia the JSON output carries.
func RenderXHTML(doc *Document, title string) string {
	b := element.NewBuilder()

	b.Html("xmlns", "http://www.w3.org/1999/xhtml").R(
		b.Head().R(
			b.Title().T(title),
		),
		b.Body().R(
			b.H1().T(title),
			renderDocument(b, doc, 2),
		),
	)

	return `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + b.String()
}

func renderDocument(b *element.Builder, doc *Document, depth int) any {
	renderProps(b, doc)

	if len(doc.linkOrder) > 0 {
		b.Ul("class", "links").R(renderLinks(b, doc))
	}

	for _, rel := range doc.embeddedOrder {
		heading(b, depth).T(rel)
		for _, child := range doc.embedded[rel] {
			b.Div("class", "embedded").R(
				renderDocument(b, child, depth+1),
			)
		}
	}

	for _, name := range doc.templateOrder {
		tpl := doc.templates[name]
		heading(b, depth).T(tplTitle(name, tpl))
		b.Form("method", formMethod(tpl.Method), "action", tpl.Target).R(
			renderFields(b, tpl),
			b.Button("type", "submit").T(Prompt(name)),
		)
	}

	return nil
}

func renderProps(b *element.Builder, doc *Document) any {
	for _, name := range doc.propOrder {
		b.P().R(
			b.Strong().T(name+": "),
			b.T(fmt.Sprintf("%v", doc.props[name])),
		)
	}
	return nil
}

func renderLinks(b *element.Builder, doc *Document) any {
	for _, rel := range doc.linkOrder {
		link := doc.links[rel]
		label := link.Title
		if label == "" {
			label = rel
		}
		b.Li().R(
			b.A("href", link.Href, "rel", rel).T(label),
		)
	}
	return nil
}

func renderFields(b *element.Builder, tpl Template) any {
	for _, prop := range tpl.Properties {
		attrs := []string{"type", "text", "name", prop.Name}
		if prop.Required {
			attrs = append(attrs, "required", "required")
		}
		if prop.ReadOnly {
			attrs = append(attrs, "readonly", "readonly")
		}
		b.Label().R(
			b.T(prop.Prompt+": "),
			b.Input(attrs...),
		)
		b.Br()
	}
	return nil
}

func heading(b *element.Builder, depth int) element.Element {
	switch depth {
	case 2:
		return b.H2()
	case 3:
		return b.H3()
	default:
		return b.H4()
	}
}

func tplTitle(name string, tpl Template) string {
	if tpl.Title != "" {
		return tpl.Title
	}
	return Prompt(name)
}

// formMethod maps an HTTP method onto what an XHTML form can express.
// Non-POST writes are tunneled as POST; the JSON rendering keeps the real
// method in _templates.
func formMethod(method string) string {
	if strings.EqualFold(method, "GET") {
		return "get"
	}
	return "post"
}
