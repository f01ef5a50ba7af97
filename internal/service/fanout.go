// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/toolhub-vn/toolhub/internal/model"
	"github.com/toolhub-vn/toolhub/internal/registry"
	"github.com/toolhub-vn/toolhub/internal/store"
	"github.com/toolhub-vn/toolhub/internal/translate"
	"github.com/toolhub-vn/toolhub/internal/util"
)

// translatable field names, in the order they appear in fallback_fields.
const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldContent     = "content"
)

// CanonicalFields is the authored text of one submission.
type CanonicalFields struct {
	Name        string
	Description string
	Content     string
}

// languageVariant is the per-language result of one fan-out.
type languageVariant struct {
	language string
	fields   CanonicalFields
	// fallback lists the fields that kept canonical text because the
	// provider failed for them
	fallback []string
}

// Fanout writes catalogue entities: each submission in the canonical
// language fans out to one persisted translation row per supported language.
// Provider failures never fail the write; the affected fields keep the
// canonical text and the row records which ones fell back.
type Fanout struct {
	db         *sql.DB
	queries    *store.Queries
	translator translate.Translator
	registry   registry.Registry
	sanitizer  *bluemonday.Policy
}

// NewFanout returns a Fanout over the given database and translator.
func NewFanout(db *sql.DB, translator translate.Translator, reg registry.Registry) *Fanout {
	return &Fanout{
		db:         db,
		queries:    store.New(db),
		translator: translator,
		registry:   reg,
		sanitizer:  bluemonday.UGCPolicy(),
	}
}

// CreateToolInput is an admin tool submission in the canonical language.
type CreateToolInput struct {
	CanonicalLanguage string
	Fields            CanonicalFields
	Slug              string
	CategoryID        int64
	ComponentKey      string
}

// CreateTool validates the submission, fans the canonical text out to every
// supported language, and persists the tool with its full translation set in
// one transaction. New tools always start unpublished.
func (f *Fanout) CreateTool(ctx context.Context, input CreateToolInput) (model.Tool, []model.ToolTranslation, error) {
	canonical := input.CanonicalLanguage
	if canonical == "" {
		canonical = model.CanonicalLanguage
	}

	fields := map[string]string{}
	if strings.TrimSpace(input.Fields.Name) == "" {
		fields["name"] = "name is required"
	}
	if !model.IsSupportedLanguage(canonical) {
		fields["canonical_language"] = fmt.Sprintf("unsupported language %q", canonical)
	}
	if !f.registry.IsValidKey(input.ComponentKey) {
		fields["component_key"] = fmt.Sprintf("unknown component key %q", input.ComponentKey)
	}
	if len(fields) > 0 {
		return model.Tool{}, nil, &ValidationError{Fields: fields}
	}

	if _, err := f.queries.GetCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Tool{}, nil, &ValidationError{Fields: map[string]string{
				"category_id": fmt.Sprintf("category %d does not exist", input.CategoryID),
			}}
		}
		return model.Tool{}, nil, err
	}

	slug := input.Slug
	if slug == "" {
		slug = util.Slugify(input.Fields.Name)
	}
	if !util.IsValidSlug(slug) {
		return model.Tool{}, nil, &ValidationError{Fields: map[string]string{
			"slug": fmt.Sprintf("invalid slug %q", slug),
		}}
	}
	exists, err := f.queries.ToolSlugExists(ctx, slug)
	if err != nil {
		return model.Tool{}, nil, err
	}
	if exists {
		return model.Tool{}, nil, &ConflictError{Resource: "tool", Field: "slug", Value: slug}
	}

	canonicalFields := CanonicalFields{
		Name:        strings.TrimSpace(input.Fields.Name),
		Description: strings.TrimSpace(input.Fields.Description),
		Content:     f.sanitizer.Sanitize(input.Fields.Content),
	}

	variants := f.translateAll(ctx, canonicalFields, model.TargetLanguages(canonical))

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Tool{}, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := f.queries.WithTx(tx)
	now := time.Now()

	tool, err := qtx.CreateTool(ctx, store.CreateToolParams{
		Slug:              slug,
		CategoryID:        input.CategoryID,
		ComponentKey:      input.ComponentKey,
		CanonicalLanguage: canonical,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return model.Tool{}, nil, mapConstraintError(err, "tool", "slug", slug)
	}

	translations := make([]model.ToolTranslation, 0, len(variants)+1)
	row, err := qtx.CreateToolTranslation(ctx, store.CreateToolTranslationParams{
		ToolID:      tool.ID,
		Language:    canonical,
		Name:        canonicalFields.Name,
		Description: canonicalFields.Description,
		Content:     canonicalFields.Content,
		CreatedAt:   now,
	})
	if err != nil {
		return model.Tool{}, nil, fmt.Errorf("creating canonical translation: %w", err)
	}
	translations = append(translations, row)

	for _, variant := range variants {
		row, err := qtx.CreateToolTranslation(ctx, store.CreateToolTranslationParams{
			ToolID:         tool.ID,
			Language:       variant.language,
			Name:           variant.fields.Name,
			Description:    variant.fields.Description,
			Content:        variant.fields.Content,
			FallbackFields: strings.Join(variant.fallback, ","),
			CreatedAt:      now,
		})
		if err != nil {
			return model.Tool{}, nil, fmt.Errorf("creating %s translation: %w", variant.language, err)
		}
		translations = append(translations, row)
	}

	if err := tx.Commit(); err != nil {
		return model.Tool{}, nil, fmt.Errorf("committing transaction: %w", err)
	}

	slog.Info("created tool", "slug", tool.Slug, "translations", len(translations))
	return tool, translations, nil
}

// CreateCategoryInput is an admin category submission in the canonical language.
type CreateCategoryInput struct {
	CanonicalLanguage string
	Name              string
	Description       string
	Slug              string
}

// CreateCategory validates the submission and fans the name and description
// out to every supported language in one transaction.
func (f *Fanout) CreateCategory(ctx context.Context, input CreateCategoryInput) (model.Category, []model.CategoryTranslation, error) {
	canonical := input.CanonicalLanguage
	if canonical == "" {
		canonical = model.CanonicalLanguage
	}

	fields := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "name is required"
	}
	if !model.IsSupportedLanguage(canonical) {
		fields["canonical_language"] = fmt.Sprintf("unsupported language %q", canonical)
	}
	if len(fields) > 0 {
		return model.Category{}, nil, &ValidationError{Fields: fields}
	}

	slug := input.Slug
	if slug == "" {
		slug = util.Slugify(input.Name)
	}
	if !util.IsValidSlug(slug) {
		return model.Category{}, nil, &ValidationError{Fields: map[string]string{
			"slug": fmt.Sprintf("invalid slug %q", slug),
		}}
	}
	exists, err := f.queries.CategorySlugExists(ctx, slug)
	if err != nil {
		return model.Category{}, nil, err
	}
	if exists {
		return model.Category{}, nil, &ConflictError{Resource: "category", Field: "slug", Value: slug}
	}

	canonicalFields := CanonicalFields{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	variants := f.translateAll(ctx, canonicalFields, model.TargetLanguages(canonical))

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Category{}, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := f.queries.WithTx(tx)
	now := time.Now()

	category, err := qtx.CreateCategory(ctx, store.CreateCategoryParams{
		Slug:              slug,
		CanonicalLanguage: canonical,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return model.Category{}, nil, mapConstraintError(err, "category", "slug", slug)
	}

	translations := make([]model.CategoryTranslation, 0, len(variants)+1)
	row, err := qtx.CreateCategoryTranslation(ctx, store.CreateCategoryTranslationParams{
		CategoryID:  category.ID,
		Language:    canonical,
		Name:        canonicalFields.Name,
		Description: canonicalFields.Description,
		CreatedAt:   now,
	})
	if err != nil {
		return model.Category{}, nil, fmt.Errorf("creating canonical translation: %w", err)
	}
	translations = append(translations, row)

	for _, variant := range variants {
		// fallback list trimmed to the fields a category actually has
		fallback := make([]string, 0, 2)
		for _, field := range variant.fallback {
			if field != fieldContent {
				fallback = append(fallback, field)
			}
		}
		row, err := qtx.CreateCategoryTranslation(ctx, store.CreateCategoryTranslationParams{
			CategoryID:     category.ID,
			Language:       variant.language,
			Name:           variant.fields.Name,
			Description:    variant.fields.Description,
			FallbackFields: strings.Join(fallback, ","),
			CreatedAt:      now,
		})
		if err != nil {
			return model.Category{}, nil, fmt.Errorf("creating %s translation: %w", variant.language, err)
		}
		translations = append(translations, row)
	}

	if err := tx.Commit(); err != nil {
		return model.Category{}, nil, fmt.Errorf("committing transaction: %w", err)
	}

	slog.Info("created category", "slug", category.Slug, "translations", len(translations))
	return category, translations, nil
}

// translateAll fans the canonical fields out to every target language
// concurrently. Results come back in target order regardless of which
// provider call finishes first.
func (f *Fanout) translateAll(ctx context.Context, fields CanonicalFields, targets []string) []languageVariant {
	variants := make([]languageVariant, len(targets))

	var wg sync.WaitGroup
	for i, lang := range targets {
		wg.Add(1)
		go func(i int, lang string) {
			defer wg.Done()
			variants[i] = f.translateFields(ctx, fields, lang)
		}(i, lang)
	}
	wg.Wait()

	return variants
}

// translateFields translates the three fields into one language. A failed
// field keeps the canonical text and is recorded in the fallback list.
func (f *Fanout) translateFields(ctx context.Context, fields CanonicalFields, lang string) languageVariant {
	variant := languageVariant{language: lang}

	type job struct {
		field string
		src   string
		dst   *string
	}
	jobs := []job{
		{fieldName, fields.Name, &variant.fields.Name},
		{fieldDescription, fields.Description, &variant.fields.Description},
		{fieldContent, fields.Content, &variant.fields.Content},
	}

	failed := make([]bool, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, field, src string, dst *string) {
			defer wg.Done()
			translated, err := f.translator.Translate(ctx, src, lang)
			if err != nil {
				slog.Warn("translation failed, keeping canonical text",
					"language", lang, "field", field, "error", err)
				*dst = src
				failed[i] = true
				return
			}
			*dst = translated
		}(i, j.field, j.src, j.dst)
	}
	wg.Wait()

	for i, j := range jobs {
		if failed[i] {
			variant.fallback = append(variant.fallback, j.field)
		}
	}
	return variant
}

// MissingLanguages returns the supported languages the tool has no
// translation row for, sorted ascending. An empty result means the fan-out
// is complete.
func (f *Fanout) MissingLanguages(ctx context.Context, toolID int64) ([]string, error) {
	if _, err := f.queries.GetToolByID(ctx, toolID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "tool", Key: fmt.Sprint(toolID)}
		}
		return nil, err
	}

	stored, err := f.queries.ListToolTranslationLanguages(ctx, toolID)
	if err != nil {
		return nil, err
	}

	have := make(map[string]bool, len(stored))
	for _, lang := range stored {
		have[lang] = true
	}

	var missing []string
	for _, lang := range model.LanguageCodes() {
		if !have[lang] {
			missing = append(missing, lang)
		}
	}
	return missing, nil
}

// RetranslateTool heals an incomplete fan-out: it re-runs translation from
// the stored canonical row for exactly the missing languages. Existing rows
// are never touched. Returns the rows it added.
func (f *Fanout) RetranslateTool(ctx context.Context, toolID int64) ([]model.ToolTranslation, error) {
	tool, err := f.queries.GetToolByID(ctx, toolID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "tool", Key: fmt.Sprint(toolID)}
	}
	if err != nil {
		return nil, err
	}

	missing, err := f.MissingLanguages(ctx, toolID)
	if err != nil {
		return nil, err
	}
	if len(missing) == 0 {
		return nil, nil
	}

	canonicalRow, err := f.queries.GetToolTranslation(ctx, toolID, tool.CanonicalLanguage)
	if errors.Is(err, sql.ErrNoRows) {
		// Without the canonical row there is no source text to heal from
		return nil, &IncompleteFanoutError{ToolID: toolID, Missing: missing}
	}
	if err != nil {
		return nil, err
	}

	fields := CanonicalFields{
		Name:        canonicalRow.Name,
		Description: canonicalRow.Description,
		Content:     canonicalRow.Content,
	}
	variants := f.translateAll(ctx, fields, missing)

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := f.queries.WithTx(tx)
	now := time.Now()

	added := make([]model.ToolTranslation, 0, len(variants))
	for _, variant := range variants {
		row, err := qtx.CreateToolTranslation(ctx, store.CreateToolTranslationParams{
			ToolID:         toolID,
			Language:       variant.language,
			Name:           variant.fields.Name,
			Description:    variant.fields.Description,
			Content:        variant.fields.Content,
			FallbackFields: strings.Join(variant.fallback, ","),
			CreatedAt:      now,
		})
		if err != nil {
			// A concurrent heal may have filled the row first
			return nil, mapConstraintError(err, "tool_translation", "language", variant.language)
		}
		added = append(added, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	slog.Info("healed tool translations", "tool_id", toolID, "added", len(added))
	return added, nil
}

// mapConstraintError converts SQLite unique violations into ConflictError.
func mapConstraintError(err error, resource, field, value string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &ConflictError{Resource: resource, Field: field, Value: value}
	}
	return err
}
