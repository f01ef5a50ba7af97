// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toolhub-vn/toolhub/internal/middleware"
	"github.com/toolhub-vn/toolhub/internal/model"
	"github.com/toolhub-vn/toolhub/internal/service"
)

// maxListLimit bounds the ?limit parameter on listing endpoints.
const maxListLimit = 100

// ListTools handles GET /api/v1/tools.
// Returns published tools in the request locale, newest first.
func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	locale := middleware.GetLocale(r)
	limit := ParseLimitParam(r, maxListLimit)

	views, err := h.catalog.ListPublishedTools(r.Context(), locale, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, views, &Meta{Total: int64(len(views)), Locale: locale})
}

// ToolDetailResponse is a localized tool plus its hreflang alternates.
type ToolDetailResponse struct {
	service.ToolDetail
	Alternates map[string]string `json:"alternates"`
}

// GetTool handles GET /api/v1/tools/{slug}.
// Drafts read as 404; the public surface never distinguishes a draft from a
// tool that does not exist.
func (h *Handler) GetTool(w http.ResponseWriter, r *http.Request) {
	locale := middleware.GetLocale(r)
	slug := chi.URLParam(r, "slug")

	detail, err := h.catalog.GetToolBySlug(r.Context(), slug, locale)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, ToolDetailResponse{
		ToolDetail: detail,
		Alternates: h.toolAlternates(detail.Slug),
	}, &Meta{Locale: locale})
}

// toolAlternates returns one canonical URL per supported language for a tool.
func (h *Handler) toolAlternates(slug string) map[string]string {
	alternates := make(map[string]string, len(model.SupportedLanguages))
	for _, lang := range model.SupportedLanguages {
		alternates[lang.Code] = fmt.Sprintf("%s/%s/tools/%s", h.baseURL, lang.Code, slug)
	}
	return alternates
}

// ListCategories handles GET /api/v1/categories.
// Categories are ordered by their newest published tool; categories with no
// published tools are omitted.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	locale := middleware.GetLocale(r)

	views, err := h.catalog.ListCategories(r.Context(), locale)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, views, &Meta{Total: int64(len(views)), Locale: locale})
}

// GetCategory handles GET /api/v1/categories/{slug}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	locale := middleware.GetLocale(r)
	slug := chi.URLParam(r, "slug")

	detail, err := h.catalog.GetCategoryBySlug(r.Context(), slug, locale)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, detail, &Meta{Locale: locale})
}

// Search handles GET /api/v1/search?q=...
// Empty queries return an empty list, not an error.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	locale := middleware.GetLocale(r)
	query := r.URL.Query().Get("q")
	limit := ParseLimitParam(r, service.DefaultSearchLimit)

	views, err := h.catalog.Search(r.Context(), query, locale, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, views, &Meta{Total: int64(len(views)), Locale: locale})
}

// ListComponentKeys handles GET /api/v1/component-keys.
// The frontend uses it to verify its widget bundle matches the catalogue.
func (h *Handler) ListComponentKeys(w http.ResponseWriter, _ *http.Request) {
	keys := h.registry.Keys()
	WriteSuccess(w, keys, &Meta{Total: int64(len(keys))})
}

// ListLanguages handles GET /api/v1/languages.
func (h *Handler) ListLanguages(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, model.SupportedLanguages, &Meta{Total: int64(len(model.SupportedLanguages))})
}
