// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/toolhub-vn/toolhub/internal/model"
	"github.com/toolhub-vn/toolhub/internal/service"
)

func TestAdminData(t *testing.T) {
	h := testSetup(t)
	category := createTestCategory(t, h, "Công cụ lập trình")
	createTestTool(t, h, "Định dạng JSON", "json-formatter", category.ID, true)
	createTestTool(t, h, "Bản nháp", "ban-nhap", category.ID, false)

	rec := executeHandler(h.AdminData, newGetRequest(t, "/api/v1/admin/data", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	data := unmarshalData[service.AdminData](t, rec)
	if len(data.Tools) != 2 {
		t.Fatalf("got %d tools, want 2 (admin sees drafts)", len(data.Tools))
	}
	if len(data.Categories) != 1 {
		t.Fatalf("got %d categories, want 1", len(data.Categories))
	}

	// Admin names prefer the Vietnamese authoring text
	if data.Categories[0].DisplayName != "Công cụ lập trình" {
		t.Errorf("category display name = %q", data.Categories[0].DisplayName)
	}
	for _, tool := range data.Tools {
		if !tool.TranslationsComplete {
			t.Errorf("tool %q incomplete: %v", tool.Slug, tool.MissingLanguages)
		}
	}
}

func TestCreateTool(t *testing.T) {
	h := testSetup(t)
	category := createTestCategory(t, h, "Công cụ lập trình")

	body := fmt.Sprintf(`{
		"name": "Định dạng JSON",
		"description": "Định dạng dữ liệu JSON",
		"content": "<p>Hướng dẫn</p>",
		"category_id": %d,
		"component_key": "json-formatter-logic",
		"canonical_language": "vi"
	}`, category.ID)

	rec := executeHandler(h.CreateTool,
		newJSONRequest(t, http.MethodPost, "/api/v1/admin/tools", body, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	created := unmarshalData[struct {
		Tool         model.Tool              `json:"tool"`
		Translations []model.ToolTranslation `json:"translations"`
	}](t, rec)

	if created.Tool.Slug != "dinh-dang-json" {
		t.Errorf("slug = %q, want dinh-dang-json", created.Tool.Slug)
	}
	if created.Tool.IsPublished {
		t.Error("new tool must start as a draft")
	}
	if len(created.Translations) != len(model.SupportedLanguages) {
		t.Errorf("fan-out produced %d rows, want %d",
			len(created.Translations), len(model.SupportedLanguages))
	}
}

func TestCreateTool_Errors(t *testing.T) {
	h := testSetup(t)
	category := createTestCategory(t, h, "Công cụ lập trình")
	createTestTool(t, h, "Định dạng JSON", "json-formatter", category.ID, false)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name: "missing name",
			body: fmt.Sprintf(`{"category_id": %d, "component_key": "json-formatter-logic"}`,
				category.ID),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_error",
		},
		{
			name: "unknown component key",
			body: fmt.Sprintf(`{"name": "X", "category_id": %d, "component_key": "nope-logic"}`,
				category.ID),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_error",
		},
		{
			name: "duplicate slug",
			body: fmt.Sprintf(`{"name": "Khác", "slug": "json-formatter", "category_id": %d, "component_key": "json-formatter-logic"}`,
				category.ID),
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := executeHandler(h.CreateTool,
				newJSONRequest(t, http.MethodPost, "/api/v1/admin/tools", tt.body, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if detail := unmarshalError(t, rec); detail.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", detail.Code, tt.wantCode)
			}
		})
	}
}

func TestCreateCategory(t *testing.T) {
	h := testSetup(t)

	body := `{"name": "Công cụ bảo mật", "description": "Các công cụ bảo mật", "canonical_language": "vi"}`
	rec := executeHandler(h.CreateCategory,
		newJSONRequest(t, http.MethodPost, "/api/v1/admin/categories", body, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	created := unmarshalData[struct {
		Category     model.Category              `json:"category"`
		Translations []model.CategoryTranslation `json:"translations"`
	}](t, rec)

	if created.Category.Slug != "cong-cu-bao-mat" {
		t.Errorf("slug = %q, want cong-cu-bao-mat", created.Category.Slug)
	}
	if len(created.Translations) != len(model.SupportedLanguages) {
		t.Errorf("fan-out produced %d rows, want %d",
			len(created.Translations), len(model.SupportedLanguages))
	}

	// A second name normalizing to the same slug conflicts
	rec = executeHandler(h.CreateCategory,
		newJSONRequest(t, http.MethodPost, "/api/v1/admin/categories",
			`{"name": "Công cụ bảo mật!", "canonical_language": "vi"}`, nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
	if detail := unmarshalError(t, rec); detail.Code != "conflict" {
		t.Errorf("error code = %q, want conflict", detail.Code)
	}
}

func TestPublishTool(t *testing.T) {
	h := testSetup(t)
	category := createTestCategory(t, h, "Công cụ lập trình")
	tool := createTestTool(t, h, "Định dạng JSON", "json-formatter", category.ID, false)

	params := map[string]string{"id": fmt.Sprint(tool.ID)}

	rec := executeHandler(h.PublishTool, newJSONRequest(t, http.MethodPatch,
		"/api/v1/admin/tools/1/publish", `{"is_published": true}`, params))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	published := unmarshalData[model.Tool](t, rec)
	if !published.IsPublished || !published.PublishedAt.Valid {
		t.Errorf("tool not published: %+v", published)
	}

	// Republishing is idempotent
	rec = executeHandler(h.PublishTool, newJSONRequest(t, http.MethodPatch,
		"/api/v1/admin/tools/1/publish", `{"is_published": true}`, params))
	if rec.Code != http.StatusOK {
		t.Errorf("republish status = %d, want 200", rec.Code)
	}

	// Unknown tool answers 404, bad id 400
	rec = executeHandler(h.PublishTool, newJSONRequest(t, http.MethodPatch,
		"/api/v1/admin/tools/999/publish", `{"is_published": true}`,
		map[string]string{"id": "999"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown tool status = %d, want 404", rec.Code)
	}
	rec = executeHandler(h.PublishTool, newJSONRequest(t, http.MethodPatch,
		"/api/v1/admin/tools/abc/publish", `{"is_published": true}`,
		map[string]string{"id": "abc"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestDeleteCategory(t *testing.T) {
	h := testSetup(t)
	category := createTestCategory(t, h, "Công cụ lập trình")
	tool := createTestTool(t, h, "Định dạng JSON", "json-formatter", category.ID, true)

	params := map[string]string{"id": fmt.Sprint(category.ID)}

	// Owning a tool blocks the delete
	rec := executeHandler(h.DeleteCategory, newJSONRequest(t, http.MethodDelete,
		"/api/v1/admin/categories/1", "", params))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}

	// After removing the tool the category deletes fine
	rec = executeHandler(h.DeleteTool, newJSONRequest(t, http.MethodDelete,
		"/api/v1/admin/tools/1", "", map[string]string{"id": fmt.Sprint(tool.ID)}))
	if rec.Code != http.StatusOK {
		t.Fatalf("tool delete status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = executeHandler(h.DeleteCategory, newJSONRequest(t, http.MethodDelete,
		"/api/v1/admin/categories/1", "", params))
	if rec.Code != http.StatusOK {
		t.Errorf("category delete status = %d, want 200", rec.Code)
	}
}

func TestRetranslateTool(t *testing.T) {
	h := testSetup(t)
	category := createTestCategory(t, h, "Công cụ lập trình")
	tool := createTestTool(t, h, "Định dạng JSON", "json-formatter", category.ID, true)

	// Remove one row to simulate a historical partial fan-out
	if _, err := h.db.ExecContext(context.Background(),
		"DELETE FROM tool_translations WHERE tool_id = ? AND language = 'de'", tool.ID); err != nil {
		t.Fatalf("deleting row: %v", err)
	}

	params := map[string]string{"id": fmt.Sprint(tool.ID)}
	rec := executeHandler(h.RetranslateTool, newJSONRequest(t, http.MethodPost,
		"/api/v1/admin/tools/1/translate", "", params))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	result := unmarshalData[struct {
		Added []model.ToolTranslation `json:"added"`
		Count int                     `json:"count"`
	}](t, rec)
	if result.Count != 1 || len(result.Added) != 1 || result.Added[0].Language != "de" {
		t.Errorf("heal result = %+v, want one de row", result)
	}

	// Healing a complete tool is a no-op
	rec = executeHandler(h.RetranslateTool, newJSONRequest(t, http.MethodPost,
		"/api/v1/admin/tools/1/translate", "", params))
	result = unmarshalData[struct {
		Added []model.ToolTranslation `json:"added"`
		Count int                     `json:"count"`
	}](t, rec)
	if result.Count != 0 {
		t.Errorf("second heal added %d rows, want 0", result.Count)
	}
}
