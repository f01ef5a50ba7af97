// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Category groups tools. Display text lives on CategoryTranslation rows,
// never on the category itself.
type Category struct {
	ID                int64     `json:"id"`
	Slug              string    `json:"slug"`
	CanonicalLanguage string    `json:"canonical_language"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CategoryTranslation holds the per-language display text of a category.
// Uniquely identified by (category_id, language).
type CategoryTranslation struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Language    string    `json:"language"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	// FallbackFields lists the fields that carry canonical text because the
	// translation provider failed for them, comma separated. Empty means a
	// genuine translation (or the canonical row itself).
	FallbackFields string    `json:"fallback_fields,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// LocaleCode implements the resolver's Localized constraint.
func (t CategoryTranslation) LocaleCode() string { return t.Language }

// UsedFallback reports whether any field carries canonical fallback text.
func (t CategoryTranslation) UsedFallback() bool { return t.FallbackFields != "" }
