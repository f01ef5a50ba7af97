// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package registry holds the closed set of browser widget component keys.
// A tool references a key; the frontend resolves it to the client-side
// widget implementation. The catalogue only validates membership.
package registry

// ComponentKey describes one registered browser widget.
type ComponentKey struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Registry validates component keys against the known widget set.
type Registry interface {
	IsValidKey(key string) bool
	Keys() []ComponentKey
}

type staticRegistry struct {
	keys []ComponentKey
}

// Default returns the registry of widgets the frontend ships with.
// Extending it requires a deploy, same as the supported language set.
func Default() Registry {
	return &staticRegistry{keys: []ComponentKey{
		{Key: "json-formatter-logic", Label: "JSON Formatter"},
		{Key: "password-gen-logic", Label: "Password Generator"},
		{Key: "base64-logic", Label: "Base64 Encoder/Decoder"},
		{Key: "meta-tag-checker-logic", Label: "Meta Tag Checker"},
	}}
}

func (r *staticRegistry) IsValidKey(key string) bool {
	for _, k := range r.keys {
		if k.Key == key {
			return true
		}
	}
	return false
}

func (r *staticRegistry) Keys() []ComponentKey {
	out := make([]ComponentKey, len(r.keys))
	copy(out, r.keys)
	return out
}
