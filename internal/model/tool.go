// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"strings"
	"time"
)

// Tool represents one catalogue entry. The component key is an opaque
// reference the presentation layer resolves to a browser widget; this core
// only validates registry membership. Visibility is governed solely by
// IsPublished; PublishedAt is informational.
type Tool struct {
	ID                int64        `json:"id"`
	Slug              string       `json:"slug"`
	CategoryID        int64        `json:"category_id"`
	ComponentKey      string       `json:"component_key"`
	CanonicalLanguage string       `json:"canonical_language"`
	IsPublished       bool         `json:"is_published"`
	PublishedAt       sql.NullTime `json:"published_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// ToolTranslation holds the per-language display text and article body of a
// tool. Uniquely identified by (tool_id, language).
type ToolTranslation struct {
	ID          int64  `json:"id"`
	ToolID      int64  `json:"tool_id"`
	Language    string `json:"language"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	// FallbackFields lists the fields that carry canonical text because the
	// translation provider failed for them, comma separated.
	FallbackFields string    `json:"fallback_fields,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// LocaleCode implements the resolver's Localized constraint.
func (t ToolTranslation) LocaleCode() string { return t.Language }

// UsedFallback reports whether any field carries canonical fallback text.
func (t ToolTranslation) UsedFallback() bool { return t.FallbackFields != "" }

// FallbackFieldList splits FallbackFields into individual field names.
func (t ToolTranslation) FallbackFieldList() []string {
	if t.FallbackFields == "" {
		return nil
	}
	return strings.Split(t.FallbackFields, ",")
}
