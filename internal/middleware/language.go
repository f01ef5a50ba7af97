// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/toolhub-vn/toolhub/internal/model"
)

// ContextKeyLocale is the context key for the resolved request locale.
const ContextKeyLocale ContextKey = "locale"

// Locale creates middleware that resolves the request locale against the
// supported language set. Priority order:
//  1. Query parameter ?locale=XX (explicit switch)
//  2. URL parameter {lang} from chi router (e.g., /ja/tools)
//  3. Accept-Language header
//  4. Site default
//
// An unsupported code at any step falls through to the next one, so the
// resolved locale is always a supported language.
func Locale() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := model.DefaultLanguage

			switch {
			case supported(r.URL.Query().Get("locale")):
				locale = strings.ToLower(r.URL.Query().Get("locale"))
			case supported(chi.URLParam(r, "lang")):
				locale = strings.ToLower(chi.URLParam(r, "lang"))
			default:
				if match := matchAcceptLanguage(r.Header.Get("Accept-Language")); match != "" {
					locale = match
				}
			}

			ctx := context.WithValue(r.Context(), ContextKeyLocale, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLocale retrieves the resolved locale from the request context, falling
// back to the site default when the middleware did not run.
func GetLocale(r *http.Request) string {
	locale, ok := r.Context().Value(ContextKeyLocale).(string)
	if !ok {
		return model.DefaultLanguage
	}
	return locale
}

func supported(code string) bool {
	return code != "" && model.IsSupportedLanguage(strings.ToLower(code))
}

// matchAcceptLanguage finds the best supported language from an
// Accept-Language header, or "" if nothing matches.
func matchAcceptLanguage(acceptLang string) string {
	if acceptLang == "" {
		return ""
	}

	// Parse Accept-Language header (simplified - ignores quality values)
	// Format: en-US,en;q=0.9,vi;q=0.8
	parts := strings.Split(acceptLang, ",")

	for _, part := range parts {
		// Remove quality value if present
		langPart := strings.TrimSpace(strings.Split(part, ";")[0])

		// Try exact match first (e.g., en-US)
		if supported(langPart) {
			return strings.ToLower(langPart)
		}

		// Try primary language code (e.g., en from en-US)
		if idx := strings.Index(langPart, "-"); idx > 0 {
			primary := langPart[:idx]
			if supported(primary) {
				return strings.ToLower(primary)
			}
		}
	}

	return ""
}
