// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"

	"github.com/toolhub-vn/toolhub/internal/service"
)

// AdminData handles GET /api/v1/admin/data.
// Returns the full catalogue, drafts and all translation rows included.
func (h *Handler) AdminData(w http.ResponseWriter, r *http.Request) {
	data, err := h.catalog.AdminData(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, data, nil)
}

// createCategoryRequest is the body of POST /api/v1/admin/categories.
type createCategoryRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	Slug              string `json:"slug"`
	CanonicalLanguage string `json:"canonical_language"`
}

// CreateCategory handles POST /api/v1/admin/categories.
// The submission is authored in the canonical language and fans out to every
// supported language before the response returns.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	category, translations, err := h.fanout.CreateCategory(r.Context(), service.CreateCategoryInput{
		CanonicalLanguage: req.CanonicalLanguage,
		Name:              req.Name,
		Description:       req.Description,
		Slug:              req.Slug,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteCreated(w, map[string]any{
		"category":     category,
		"translations": translations,
	})
}

// DeleteCategory handles DELETE /api/v1/admin/categories/{id}.
// A category that still owns tools answers 409.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid category ID", nil)
		return
	}

	if err := h.fanout.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"deleted": id}, nil)
}

// createToolRequest is the body of POST /api/v1/admin/tools.
type createToolRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	Content           string `json:"content"`
	Slug              string `json:"slug"`
	CategoryID        int64  `json:"category_id"`
	ComponentKey      string `json:"component_key"`
	CanonicalLanguage string `json:"canonical_language"`
}

// CreateTool handles POST /api/v1/admin/tools.
// New tools always start as drafts.
func (h *Handler) CreateTool(w http.ResponseWriter, r *http.Request) {
	var req createToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	tool, translations, err := h.fanout.CreateTool(r.Context(), service.CreateToolInput{
		CanonicalLanguage: req.CanonicalLanguage,
		Fields: service.CanonicalFields{
			Name:        req.Name,
			Description: req.Description,
			Content:     req.Content,
		},
		Slug:         req.Slug,
		CategoryID:   req.CategoryID,
		ComponentKey: req.ComponentKey,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteCreated(w, map[string]any{
		"tool":         tool,
		"translations": translations,
	})
}

// publishRequest is the body of PATCH /api/v1/admin/tools/{id}/publish.
type publishRequest struct {
	IsPublished bool `json:"is_published"`
}

// PublishTool handles PATCH /api/v1/admin/tools/{id}/publish.
// Idempotent in both directions.
func (h *Handler) PublishTool(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid tool ID", nil)
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	tool, err := h.fanout.SetPublished(r.Context(), id, req.IsPublished)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, tool, nil)
}

// RetranslateTool handles POST /api/v1/admin/tools/{id}/translate.
// Heals an incomplete fan-out; a complete tool answers with zero added rows.
func (h *Handler) RetranslateTool(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid tool ID", nil)
		return
	}

	added, err := h.fanout.RetranslateTool(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{
		"added": added,
		"count": len(added),
	}, nil)
}

// DeleteTool handles DELETE /api/v1/admin/tools/{id}.
// Published tools delete the same as drafts; translation rows cascade.
func (h *Handler) DeleteTool(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid tool ID", nil)
		return
	}

	if err := h.fanout.DeleteTool(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"deleted": id}, nil)
}
