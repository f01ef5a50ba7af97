// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/toolhub-vn/toolhub/internal/model"
	"github.com/toolhub-vn/toolhub/internal/registry"
	"github.com/toolhub-vn/toolhub/internal/store"
	"github.com/toolhub-vn/toolhub/internal/testutil"
	"github.com/toolhub-vn/toolhub/internal/translate"
)

// fakeTranslator translates by tagging text with the target language, with
// configurable per-language or total failure.
type fakeTranslator struct {
	mu        sync.Mutex
	failAll   bool
	failLangs map[string]bool
	calls     int
}

func (f *fakeTranslator) Translate(_ context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failAll || f.failLangs[targetLang] {
		return "", &translate.ProviderError{
			Provider: "fake",
			Language: targetLang,
			Err:      fmt.Errorf("simulated failure"),
		}
	}
	return "[" + targetLang + "] " + text, nil
}

func newTestFanout(t *testing.T, translator translate.Translator) (*Fanout, *store.Queries, func()) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	return NewFanout(db, translator, registry.Default()), store.New(db), cleanup
}

func mustCreateCategory(t *testing.T, f *Fanout, name string) model.Category {
	t.Helper()
	category, _, err := f.CreateCategory(context.Background(), CreateCategoryInput{
		CanonicalLanguage: "vi",
		Name:              name,
	})
	if err != nil {
		t.Fatalf("CreateCategory(%q): %v", name, err)
	}
	return category
}

func TestCreateTool_FullFanout(t *testing.T) {
	f, q, cleanup := newTestFanout(t, &fakeTranslator{})
	defer cleanup()

	ctx := context.Background()
	category := mustCreateCategory(t, f, "Công cụ lập trình")

	tool, translations, err := f.CreateTool(ctx, CreateToolInput{
		CanonicalLanguage: "vi",
		Fields: CanonicalFields{
			Name:        "Định dạng JSON",
			Description: "Định dạng dữ liệu JSON",
			Content:     "<p>Dán JSON vào đây.</p>",
		},
		CategoryID:   category.ID,
		ComponentKey: "json-formatter-logic",
	})
	if err != nil {
		t.Fatalf("CreateTool: %v", err)
	}

	if tool.Slug != "dinh-dang-json" {
		t.Errorf("Slug = %q, want %q", tool.Slug, "dinh-dang-json")
	}
	if tool.IsPublished {
		t.Error("new tool must start unpublished")
	}
	if len(translations) != len(model.SupportedLanguages) {
		t.Fatalf("fan-out produced %d rows, want %d", len(translations), len(model.SupportedLanguages))
	}

	byLang := make(map[string]model.ToolTranslation)
	for _, tr := range translations {
		byLang[tr.Language] = tr
	}

	// Canonical row keeps the authored text verbatim, no fallback marker
	vi := byLang["vi"]
	if vi.Name != "Định dạng JSON" || vi.UsedFallback() {
		t.Errorf("canonical row wrong: %+v", vi)
	}

	// Target rows carry translated text
	fr := byLang["fr"]
	if fr.Name != "[fr] Định dạng JSON" {
		t.Errorf("fr name = %q, want translated", fr.Name)
	}
	if fr.UsedFallback() {
		t.Errorf("fr row should not record fallback, got %q", fr.FallbackFields)
	}

	// Rows are persisted, not just returned
	stored, err := q.ListToolTranslations(ctx, tool.ID)
	if err != nil {
		t.Fatalf("ListToolTranslations: %v", err)
	}
	if len(stored) != len(model.SupportedLanguages) {
		t.Errorf("stored %d rows, want %d", len(stored), len(model.SupportedLanguages))
	}
}

func TestCreateTool_AllProvidersFail(t *testing.T) {
	f, _, cleanup := newTestFanout(t, &fakeTranslator{failAll: true})
	defer cleanup()

	ctx := context.Background()
	category := mustCreateCategory(t, f, "Công cụ bảo mật")

	_, translations, err := f.CreateTool(ctx, CreateToolInput{
		CanonicalLanguage: "vi",
		Fields: CanonicalFields{
			Name:        "Tạo mật khẩu",
			Description: "Tạo mật khẩu ngẫu nhiên",
		},
		CategoryID:   category.ID,
		ComponentKey: "password-gen-logic",
	})
	if err != nil {
		t.Fatalf("CreateTool must succeed even when every translation fails: %v", err)
	}
	if len(translations) != len(model.SupportedLanguages) {
		t.Fatalf("fan-out produced %d rows, want %d", len(translations), len(model.SupportedLanguages))
	}

	for _, tr := range translations {
		if tr.Name != "Tạo mật khẩu" {
			t.Errorf("%s name = %q, want canonical text", tr.Language, tr.Name)
		}
		if tr.Language == "vi" {
			if tr.UsedFallback() {
				t.Error("canonical row must not record fallback")
			}
			continue
		}
		fallback := tr.FallbackFieldList()
		// content was empty so only name and description fell back
		if len(fallback) != 2 || fallback[0] != "name" || fallback[1] != "description" {
			t.Errorf("%s fallback fields = %v, want [name description]", tr.Language, fallback)
		}
	}
}

func TestCreateTool_SingleLanguageFails(t *testing.T) {
	f, _, cleanup := newTestFanout(t, &fakeTranslator{failLangs: map[string]bool{"fr": true}})
	defer cleanup()

	ctx := context.Background()
	category := mustCreateCategory(t, f, "Công cụ SEO")

	_, translations, err := f.CreateTool(ctx, CreateToolInput{
		CanonicalLanguage: "vi",
		Fields: CanonicalFields{
			Name:        "Kiểm tra thẻ meta",
			Description: "Phân tích thẻ meta",
		},
		CategoryID:   category.ID,
		ComponentKey: "meta-tag-checker-logic",
	})
	if err != nil {
		t.Fatalf("CreateTool: %v", err)
	}

	for _, tr := range translations {
		switch tr.Language {
		case "fr":
			if tr.Name != "Kiểm tra thẻ meta" {
				t.Errorf("fr name = %q, want canonical fallback", tr.Name)
			}
			if !tr.UsedFallback() {
				t.Error("fr row must record its fallback fields")
			}
		case "vi":
			// canonical
		default:
			if !strings.HasPrefix(tr.Name, "["+tr.Language+"] ") {
				t.Errorf("%s name = %q, want translated", tr.Language, tr.Name)
			}
			if tr.UsedFallback() {
				t.Errorf("%s row unexpectedly fell back: %q", tr.Language, tr.FallbackFields)
			}
		}
	}
}

func TestCreateTool_EmptyFieldsSkipProvider(t *testing.T) {
	translator := &fakeTranslator{}
	f, _, cleanup := newTestFanout(t, translator)
	defer cleanup()

	ctx := context.Background()
	category := mustCreateCategory(t, f, "Công cụ lập trình")
	translator.mu.Lock()
	callsAfterCategory := translator.calls
	translator.mu.Unlock()

	_, _, err := f.CreateTool(ctx, CreateToolInput{
		CanonicalLanguage: "vi",
		Fields:            CanonicalFields{Name: "Mã hóa Base64"},
		CategoryID:        category.ID,
		ComponentKey:      "base64-logic",
	})
	if err != nil {
		t.Fatalf("CreateTool: %v", err)
	}

	// Only the name should reach the provider: 9 target languages, 1 field
	translator.mu.Lock()
	toolCalls := translator.calls - callsAfterCategory
	translator.mu.Unlock()
	want := len(model.SupportedLanguages) - 1
	if toolCalls != want {
		t.Errorf("provider calls = %d, want %d (empty fields must not be sent)", toolCalls, want)
	}
}

func TestCreateTool_Validation(t *testing.T) {
	f, _, cleanup := newTestFanout(t, &fakeTranslator{})
	defer cleanup()

	ctx := context.Background()
	category := mustCreateCategory(t, f, "Công cụ lập trình")

	tests := []struct {
		name  string
		input CreateToolInput
		field string
	}{
		{
			name: "missing name",
			input: CreateToolInput{
				CategoryID:   category.ID,
				ComponentKey: "json-formatter-logic",
			},
			field: "name",
		},
		{
			name: "unknown component key",
			input: CreateToolInput{
				Fields:       CanonicalFields{Name: "Công cụ"},
				CategoryID:   category.ID,
				ComponentKey: "nonexistent-logic",
			},
			field: "component_key",
		},
		{
			name: "unsupported language",
			input: CreateToolInput{
				CanonicalLanguage: "xx",
				Fields:            CanonicalFields{Name: "Công cụ"},
				CategoryID:        category.ID,
				ComponentKey:      "json-formatter-logic",
			},
			field: "canonical_language",
		},
		{
			name: "unknown category",
			input: CreateToolInput{
				Fields:       CanonicalFields{Name: "Công cụ"},
				CategoryID:   99999,
				ComponentKey: "json-formatter-logic",
			},
			field: "category_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.CreateTool(ctx, tt.input)
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("error %T is not a *ValidationError: %v", err, err)
			}
			if _, ok := valErr.Fields[tt.field]; !ok {
				t.Errorf("validation fields %v missing %q", valErr.Fields, tt.field)
			}
		})
	}
}

func TestCreateTool_SlugConflict(t *testing.T) {
	f, _, cleanup := newTestFanout(t, &fakeTranslator{})
	defer cleanup()

	ctx := context.Background()
	category := mustCreateCategory(t, f, "Công cụ lập trình")

	input := CreateToolInput{
		CanonicalLanguage: "vi",
		Fields:            CanonicalFields{Name: "Định dạng JSON"},
		CategoryID:        category.ID,
		ComponentKey:      "json-formatter-logic",
	}
	if _, _, err := f.CreateTool(ctx, input); err != nil {
		t.Fatalf("first CreateTool: %v", err)
	}

	_, _, err := f.CreateTool(ctx, input)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error %T is not a *ConflictError: %v", err, err)
	}
	if conflict.Value != "dinh-dang-json" {
		t.Errorf("conflict value = %q, want %q", conflict.Value, "dinh-dang-json")
	}
}

func TestCreateTool_SanitizesContent(t *testing.T) {
	f, _, cleanup := newTestFanout(t, &fakeTranslator{failAll: true})
	defer cleanup()

	ctx := context.Background()
	category := mustCreateCategory(t, f, "Công cụ lập trình")

	_, translations, err := f.CreateTool(ctx, CreateToolInput{
		CanonicalLanguage: "vi",
		Fields: CanonicalFields{
			Name:    "Định dạng JSON",
			Content: `<p>an toàn</p><script>alert("xss")</script>`,
		},
		CategoryID:   category.ID,
		ComponentKey: "json-formatter-logic",
	})
	if err != nil {
		t.Fatalf("CreateTool: %v", err)
	}

	for _, tr := range translations {
		if strings.Contains(tr.Content, "<script>") {
			t.Fatalf("%s content not sanitized: %q", tr.Language, tr.Content)
		}
	}
}

func TestSetPublished_Idempotent(t *testing.T) {
	f, _, cleanup := newTestFanout(t, &fakeTranslator{})
	defer cleanup()

	ctx := context.Background()
	category := mustCreateCategory(t, f, "Công cụ lập trình")
	tool, _, err := f.CreateTool(ctx, CreateToolInput{
		CanonicalLanguage: "vi",
		Fields:            CanonicalFields{Name: "Định dạng JSON"},
		CategoryID:        category.ID,
		ComponentKey:      "json-formatter-logic",
	})
	if err != nil {
		t.Fatalf("CreateTool: %v", err)
	}

	published, err := f.SetPublished(ctx, tool.ID, true)
	if err != nil {
		t.Fatalf("SetPublished: %v", err)
	}
	if !published.IsPublished || !published.PublishedAt.Valid {
		t.Fatalf("publish did not stick: %+v", published)
	}
	firstPublishedAt := published.PublishedAt.Time

	// Publishing again changes nothing
	again, err := f.SetPublished(ctx, tool.ID, true)
	if err != nil {
		t.Fatalf("second SetPublished: %v", err)
	}
	if !again.PublishedAt.Time.Equal(firstPublishedAt) {
		t.Error("republish must not move PublishedAt")
	}

	// Unpublishing keeps the historical timestamp
	draft, err := f.SetPublished(ctx, tool.ID, false)
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if draft.IsPublished {
		t.Error("IsPublished = true after unpublish")
	}
	if !draft.PublishedAt.Valid {
		t.Error("PublishedAt must survive unpublish")
	}

	_, err = f.SetPublished(ctx, 99999, true)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("error %T is not a *NotFoundError", err)
	}
}

func TestDeleteCategory_GuardedByTools(t *testing.T) {
	f, q, cleanup := newTestFanout(t, &fakeTranslator{})
	defer cleanup()

	ctx := context.Background()
	category := mustCreateCategory(t, f, "Công cụ lập trình")
	tool, _, err := f.CreateTool(ctx, CreateToolInput{
		CanonicalLanguage: "vi",
		Fields:            CanonicalFields{Name: "Định dạng JSON"},
		CategoryID:        category.ID,
		ComponentKey:      "json-formatter-logic",
	})
	if err != nil {
		t.Fatalf("CreateTool: %v", err)
	}

	err = f.DeleteCategory(ctx, category.ID)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error %T is not a *ConflictError: %v", err, err)
	}

	// Tool delete is unguarded even for published tools, and cascades
	if _, err := f.SetPublished(ctx, tool.ID, true); err != nil {
		t.Fatalf("SetPublished: %v", err)
	}
	if err := f.DeleteTool(ctx, tool.ID); err != nil {
		t.Fatalf("DeleteTool: %v", err)
	}
	rows, err := q.ListToolTranslations(ctx, tool.ID)
	if err != nil {
		t.Fatalf("ListToolTranslations: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("translations survived tool delete: %d rows", len(rows))
	}

	// Category is deletable once empty
	if err := f.DeleteCategory(ctx, category.ID); err != nil {
		t.Fatalf("DeleteCategory after emptying: %v", err)
	}
}

func TestRetranslateTool_HealsMissingLanguages(t *testing.T) {
	f, q, cleanup := newTestFanout(t, &fakeTranslator{})
	defer cleanup()

	ctx := context.Background()
	category := mustCreateCategory(t, f, "Công cụ lập trình")
	tool, _, err := f.CreateTool(ctx, CreateToolInput{
		CanonicalLanguage: "vi",
		Fields:            CanonicalFields{Name: "Định dạng JSON"},
		CategoryID:        category.ID,
		ComponentKey:      "json-formatter-logic",
	})
	if err != nil {
		t.Fatalf("CreateTool: %v", err)
	}

	// Simulate a historical partial fan-out by removing two rows
	db := f.db
	if _, err := db.ExecContext(ctx,
		"DELETE FROM tool_translations WHERE tool_id = ? AND language IN ('fr', 'ko')", tool.ID); err != nil {
		t.Fatalf("deleting rows: %v", err)
	}

	missing, err := f.MissingLanguages(ctx, tool.ID)
	if err != nil {
		t.Fatalf("MissingLanguages: %v", err)
	}
	if len(missing) != 2 || missing[0] != "fr" || missing[1] != "ko" {
		t.Fatalf("MissingLanguages = %v, want [fr ko]", missing)
	}

	added, err := f.RetranslateTool(ctx, tool.ID)
	if err != nil {
		t.Fatalf("RetranslateTool: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("healed %d rows, want 2", len(added))
	}

	missing, err = f.MissingLanguages(ctx, tool.ID)
	if err != nil {
		t.Fatalf("MissingLanguages after heal: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("still missing %v after heal", missing)
	}

	// Healing a complete tool is a no-op
	added, err = f.RetranslateTool(ctx, tool.ID)
	if err != nil {
		t.Fatalf("RetranslateTool on complete tool: %v", err)
	}
	if added != nil {
		t.Errorf("expected no-op, added %d rows", len(added))
	}

	// Existing rows were not rewritten
	stored, err := q.ListToolTranslations(ctx, tool.ID)
	if err != nil {
		t.Fatalf("ListToolTranslations: %v", err)
	}
	if len(stored) != len(model.SupportedLanguages) {
		t.Errorf("stored %d rows, want %d", len(stored), len(model.SupportedLanguages))
	}
}

func TestRetranslateTool_MissingCanonicalRow(t *testing.T) {
	f, _, cleanup := newTestFanout(t, &fakeTranslator{})
	defer cleanup()

	ctx := context.Background()
	category := mustCreateCategory(t, f, "Công cụ lập trình")
	tool, _, err := f.CreateTool(ctx, CreateToolInput{
		CanonicalLanguage: "vi",
		Fields:            CanonicalFields{Name: "Định dạng JSON"},
		CategoryID:        category.ID,
		ComponentKey:      "json-formatter-logic",
	})
	if err != nil {
		t.Fatalf("CreateTool: %v", err)
	}

	// Losing the canonical row leaves nothing to heal from
	if _, err := f.db.ExecContext(ctx,
		"DELETE FROM tool_translations WHERE tool_id = ? AND language IN ('vi', 'fr')", tool.ID); err != nil {
		t.Fatalf("deleting rows: %v", err)
	}

	_, err = f.RetranslateTool(ctx, tool.ID)
	var incomplete *IncompleteFanoutError
	if !errors.As(err, &incomplete) {
		t.Fatalf("error %T is not an *IncompleteFanoutError: %v", err, err)
	}
	if incomplete.ToolID != tool.ID {
		t.Errorf("ToolID = %d, want %d", incomplete.ToolID, tool.ID)
	}
}

func TestCreateCategory_SlugConflict(t *testing.T) {
	f, q, cleanup := newTestFanout(t, &fakeTranslator{})
	defer cleanup()
	ctx := context.Background()

	mustCreateCategory(t, f, "Công cụ bảo mật")

	// A different name that normalizes to the same slug conflicts
	_, _, err := f.CreateCategory(ctx, CreateCategoryInput{
		CanonicalLanguage: "vi",
		Name:              "Công cụ bảo mật!",
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error %T is not a *ConflictError: %v", err, err)
	}
	if conflict.Value != "cong-cu-bao-mat" {
		t.Errorf("conflict Value = %q, want cong-cu-bao-mat", conflict.Value)
	}

	// The rejected submission wrote nothing
	rows, err := q.ListAllCategoryTranslations(ctx)
	if err != nil {
		t.Fatalf("ListAllCategoryTranslations: %v", err)
	}
	if len(rows) != len(model.SupportedLanguages) {
		t.Errorf("stored %d rows, want %d (first category only)",
			len(rows), len(model.SupportedLanguages))
	}
}

// translatorFunc adapts a function to the Translator interface.
type translatorFunc func(ctx context.Context, text, targetLang string) (string, error)

func (fn translatorFunc) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return fn(ctx, text, targetLang)
}

func TestRetranslateTool_ConcurrentHealConflict(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)

	// hijack lets the test interleave a competing write while a heal is
	// between reading the missing set and inserting its rows
	var hijack func(lang string)
	translator := translatorFunc(func(_ context.Context, text, lang string) (string, error) {
		if hijack != nil {
			hijack(lang)
		}
		if strings.TrimSpace(text) == "" {
			return "", nil
		}
		return "[" + lang + "] " + text, nil
	})
	f := NewFanout(db, translator, registry.Default())

	ctx := context.Background()
	category := mustCreateCategory(t, f, "Công cụ lập trình")
	tool, _, err := f.CreateTool(ctx, CreateToolInput{
		CanonicalLanguage: "vi",
		Fields:            CanonicalFields{Name: "Định dạng JSON"},
		CategoryID:        category.ID,
		ComponentKey:      "json-formatter-logic",
	})
	if err != nil {
		t.Fatalf("CreateTool: %v", err)
	}

	if _, err := f.db.ExecContext(ctx,
		"DELETE FROM tool_translations WHERE tool_id = ? AND language = 'de'", tool.ID); err != nil {
		t.Fatalf("deleting row: %v", err)
	}

	// While the heal translates, a competing heal fills the row first
	var once sync.Once
	hijack = func(lang string) {
		once.Do(func() {
			_, err := q.CreateToolTranslation(ctx, store.CreateToolTranslationParams{
				ToolID:    tool.ID,
				Language:  "de",
				Name:      "[de] Định dạng JSON",
				CreatedAt: time.Now(),
			})
			if err != nil {
				t.Errorf("competing insert: %v", err)
			}
		})
	}

	_, err = f.RetranslateTool(ctx, tool.ID)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error %T is not a *ConflictError: %v", err, err)
	}

	// The row the competitor wrote survives, the set is complete
	hijack = nil
	added, err := f.RetranslateTool(ctx, tool.ID)
	if err != nil {
		t.Fatalf("RetranslateTool after conflict: %v", err)
	}
	if len(added) != 0 {
		t.Errorf("added %d rows to a complete set", len(added))
	}
}
