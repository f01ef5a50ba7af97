// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Developer Tools", "developer-tools"},
		{"vietnamese accents", "Định dạng JSON", "dinh-dang-json"},
		{"vietnamese d only", "Đo lường", "do-luong"},
		{"mixed punctuation", "Base64 Encoder/Decoder!", "base64-encoderdecoder"},
		{"multiple spaces", "Meta   Tag   Checker", "meta-tag-checker"},
		{"leading trailing", " - SEO Tools - ", "seo-tools"},
		{"accented latin", "Générateur de mots de passe", "generateur-de-mots-de-passe"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"json-formatter", "a", "tool-2", "x1-y2-z3"}
	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "-leading", "trailing-", "double--hyphen", "UPPER", "espa ce", "dấu"}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}

func TestIsValidLangCode(t *testing.T) {
	for _, s := range []string{"en", "vi", "ja"} {
		if !IsValidLangCode(s) {
			t.Errorf("IsValidLangCode(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "e", "eng", "EN", "v1"} {
		if IsValidLangCode(s) {
			t.Errorf("IsValidLangCode(%q) = true, want false", s)
		}
	}
}
