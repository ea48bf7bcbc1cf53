/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"unicode"
)

// Template is a prompt with {{name}} placeholders. Bind methods return a new
// Template so package-level templates stay reusable; Build fails if any
// placeholder is still unbound.
type Template struct {
	text     string
	bindings map[string]binder
}

type binder interface {
	value() (string, error)
}

type unbound struct{ name string }

func (u unbound) value() (string, error) {
	return "", fmt.Errorf("unbound placeholder: %s", u.name)
}

type literal struct{ val string }

func (l literal) value() (string, error) { return l.val, nil }

type jsonValue struct{ data any }

func (j jsonValue) value() (string, error) {
	b, err := json.MarshalIndent(j.data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling binding: %w", err)
	}
	return string(b), nil
}

// New parses a template and registers its placeholders as unbound.
func New(text string) (*Template, error) {
	bindings := make(map[string]binder)
	if _, err := walk(text, func(name string) (string, error) {
		if _, ok := bindings[name]; !ok {
			bindings[name] = unbound{name: name}
		}
		return "{{" + name + "}}", nil
	}); err != nil {
		return nil, err
	}
	return &Template{text: text, bindings: bindings}, nil
}

// MustNew is New for package-level template literals.
func MustNew(text string) *Template {
	t, err := New(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Placeholders returns the set of placeholder names in the template.
func (t *Template) Placeholders() map[string]struct{} {
	names := make(map[string]struct{}, len(t.bindings))
	for name := range t.bindings {
		names[name] = struct{}{}
	}
	return names
}

func (t *Template) bind(name string, b binder) (*Template, error) {
	existing, ok := t.bindings[name]
	if !ok {
		return nil, fmt.Errorf("binding %q not found in template", name)
	}
	if _, isUnbound := existing.(unbound); !isUnbound {
		return nil, fmt.Errorf("binding %q already bound", name)
	}
	next := &Template{text: t.text, bindings: maps.Clone(t.bindings)}
	next.bindings[name] = b
	return next, nil
}

// Bind binds a string value to a placeholder.
func (t *Template) Bind(name, value string) (*Template, error) {
	return t.bind(name, literal{val: value})
}

// BindJSON binds structured data to a placeholder as indented JSON.
func (t *Template) BindJSON(name string, data any) (*Template, error) {
	return t.bind(name, jsonValue{data: data})
}

// Build renders the template, failing on any unbound placeholder.
func (t *Template) Build() (string, error) {
	values := make(map[string]string, len(t.bindings))
	for name, b := range t.bindings {
		v, err := b.value()
		if err != nil {
			return "", err
		}
		values[name] = v
	}
	return walk(t.text, func(name string) (string, error) {
		return values[name], nil
	})
}

// BuildWith binds every placeholder in one call and renders. String values
// bind literally; everything else binds as indented JSON.
func BuildWith(t *Template, bindings map[string]any) (string, error) {
	var err error
	for name, value := range bindings {
		if s, ok := value.(string); ok {
			t, err = t.Bind(name, s)
		} else {
			t, err = t.BindJSON(name, value)
		}
		if err != nil {
			return "", err
		}
	}
	return t.Build()
}

// walk tokenizes the template and calls resolve for each placeholder.
func walk(text string, resolve func(name string) (string, error)) (string, error) {
	var out strings.Builder
	for len(text) > 0 {
		start := strings.Index(text, "{{")
		if start == -1 {
			out.WriteString(text)
			break
		}
		out.WriteString(text[:start])

		end := strings.Index(text[start:], "}}")
		if end == -1 {
			return "", errors.New("unclosed placeholder: missing '}}'")
		}
		end += start + 2

		name := strings.TrimSpace(text[start+2 : end-2])
		if !isIdentifier(name) {
			return "", fmt.Errorf("invalid placeholder identifier %q", name)
		}
		replacement, err := resolve(name)
		if err != nil {
			return "", err
		}
		out.WriteString(replacement)
		text = text[end:]
	}
	return out.String(), nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	runes := []rune(s)
	if !unicode.IsLetter(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
