// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/toolhub-vn/toolhub/internal/middleware"
	"github.com/toolhub-vn/toolhub/internal/model"
	"github.com/toolhub-vn/toolhub/internal/registry"
	"github.com/toolhub-vn/toolhub/internal/service"
	"github.com/toolhub-vn/toolhub/internal/testutil"
)

// stubTranslator tags text with the target language so tests can tell
// translated rows from canonical ones.
type stubTranslator struct{}

func (stubTranslator) Translate(_ context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return "[" + targetLang + "] " + text, nil
}

// testSetup creates a migrated test database and API handler.
func testSetup(t *testing.T) *Handler {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return NewHandler(db, stubTranslator{}, registry.Default(), "https://toolhub.vn")
}

// createTestCategory creates a category through the fan-out path.
func createTestCategory(t *testing.T, h *Handler, name string) model.Category {
	t.Helper()
	category, _, err := h.fanout.CreateCategory(context.Background(), service.CreateCategoryInput{
		CanonicalLanguage: "vi",
		Name:              name,
	})
	if err != nil {
		t.Fatalf("creating test category: %v", err)
	}
	return category
}

// createTestTool creates a tool through the fan-out path, optionally publishing it.
func createTestTool(t *testing.T, h *Handler, name, slug string, categoryID int64, publish bool) model.Tool {
	t.Helper()
	tool, _, err := h.fanout.CreateTool(context.Background(), service.CreateToolInput{
		CanonicalLanguage: "vi",
		Fields:            service.CanonicalFields{Name: name, Description: "Mô tả " + name},
		Slug:              slug,
		CategoryID:        categoryID,
		ComponentKey:      "json-formatter-logic",
	})
	if err != nil {
		t.Fatalf("creating test tool: %v", err)
	}
	if publish {
		if tool, err = h.fanout.SetPublished(context.Background(), tool.ID, true); err != nil {
			t.Fatalf("publishing test tool: %v", err)
		}
	}
	return tool
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withLocale injects a resolved locale the way the Locale middleware would.
func withLocale(r *http.Request, locale string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyLocale, locale))
}

// newJSONRequest creates an HTTP request with JSON body and optional URL params.
func newJSONRequest(t *testing.T, method, path string, body string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// newGetRequest creates an HTTP GET request with optional URL params.
func newGetRequest(t *testing.T, path string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// executeHandler runs a handler func and returns the recorder.
func executeHandler(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// unmarshalData decodes the data envelope of a successful response.
func unmarshalData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return resp.Data
}

// unmarshalError decodes the error envelope of a failed response.
func unmarshalError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error response %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}
