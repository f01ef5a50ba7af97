// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// DefaultLanguage is the site-wide fallback locale.
const DefaultLanguage = "en"

// CanonicalLanguage is the language admins author content in unless the
// submission says otherwise.
const CanonicalLanguage = "vi"

// Language represents one entry of the fixed supported-language set.
type Language struct {
	Code       string `json:"code"`        // ISO 639-1: en, vi, ja
	Name       string `json:"name"`        // English, Vietnamese, Japanese
	NativeName string `json:"native_name"` // English, Tiếng Việt, 日本語
}

// SupportedLanguages is the closed set of languages the catalogue stores
// translations for. Extending it requires a deploy; the fan-out writer and
// the completeness checks iterate exactly this list.
var SupportedLanguages = []Language{
	{"en", "English", "English"},
	{"vi", "Vietnamese", "Tiếng Việt"},
	{"ja", "Japanese", "日本語"},
	{"ko", "Korean", "한국어"},
	{"id", "Indonesian", "Bahasa Indonesia"},
	{"es", "Spanish", "Español"},
	{"pt", "Portuguese", "Português"},
	{"de", "German", "Deutsch"},
	{"fr", "French", "Français"},
	{"hi", "Hindi", "हिन्दी"},
}

// LanguageCodes returns the codes of all supported languages.
func LanguageCodes() []string {
	codes := make([]string, 0, len(SupportedLanguages))
	for _, lang := range SupportedLanguages {
		codes = append(codes, lang.Code)
	}
	return codes
}

// IsSupportedLanguage reports whether code is in the supported set.
func IsSupportedLanguage(code string) bool {
	for _, lang := range SupportedLanguages {
		if lang.Code == code {
			return true
		}
	}
	return false
}

// LanguageName returns the English name for a supported code, or the code
// itself when unknown. Used to build translation prompts.
func LanguageName(code string) string {
	for _, lang := range SupportedLanguages {
		if lang.Code == code {
			return lang.Name
		}
	}
	return code
}

// TargetLanguages returns every supported language except the canonical one.
func TargetLanguages(canonical string) []string {
	targets := make([]string, 0, len(SupportedLanguages)-1)
	for _, lang := range SupportedLanguages {
		if lang.Code != canonical {
			targets = append(targets, lang.Code)
		}
	}
	return targets
}
