// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/toolhub-vn/toolhub/internal/model"
)

// AdminTool is a tool as the admin surface sees it: every translation row,
// drafts included, plus a completeness flag for the fan-out.
type AdminTool struct {
	model.Tool
	DisplayName          string                  `json:"display_name"`
	Translations         []model.ToolTranslation `json:"translations"`
	MissingLanguages     []string                `json:"missing_languages,omitempty"`
	TranslationsComplete bool                    `json:"translations_complete"`
}

// AdminCategory is a category as the admin surface sees it.
type AdminCategory struct {
	model.Category
	DisplayName  string                      `json:"display_name"`
	Translations []model.CategoryTranslation `json:"translations"`
	ToolCount    int                         `json:"tool_count"`
}

// AdminData is the full catalogue snapshot for the admin surface.
type AdminData struct {
	Categories []AdminCategory `json:"categories"`
	Tools      []AdminTool     `json:"tools"`
}

// adminDisplayName prefers the canonical authoring language, then the site
// fallback. The admin surface reads in the language content was written in.
func adminDisplayName[T Localized](translations []T, name func(T) string, fallback string) string {
	if tr, ok := Resolve(translations, model.CanonicalLanguage, model.DefaultLanguage); ok {
		if n := name(tr); n != "" {
			return n
		}
	}
	return fallback
}

// AdminData returns every category and tool with all translation rows,
// regardless of publish state, newest tools first.
func (c *Catalog) AdminData(ctx context.Context) (AdminData, error) {
	var (
		categories           []model.Category
		tools                []model.Tool
		toolTranslations     []model.ToolTranslation
		categoryTranslations []model.CategoryTranslation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = c.queries.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tools, err = c.queries.ListTools(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		toolTranslations, err = c.queries.ListAllToolTranslations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categoryTranslations, err = c.queries.ListAllCategoryTranslations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return AdminData{}, err
	}

	toolRows := groupToolTranslations(toolTranslations)
	categoryRows := groupCategoryTranslations(categoryTranslations)

	toolCounts := make(map[int64]int)
	for _, tool := range tools {
		toolCounts[tool.CategoryID]++
	}

	data := AdminData{
		Categories: make([]AdminCategory, 0, len(categories)),
		Tools:      make([]AdminTool, 0, len(tools)),
	}

	for _, category := range categories {
		rows := categoryRows[category.ID]
		data.Categories = append(data.Categories, AdminCategory{
			Category: category,
			DisplayName: adminDisplayName(rows,
				func(t model.CategoryTranslation) string { return t.Name }, category.Slug),
			Translations: rows,
			ToolCount:    toolCounts[category.ID],
		})
	}

	supported := model.LanguageCodes()
	for _, tool := range newestFirst(tools) {
		rows := toolRows[tool.ID]
		have := make(map[string]bool, len(rows))
		for _, row := range rows {
			have[row.Language] = true
		}
		var missing []string
		for _, lang := range supported {
			if !have[lang] {
				missing = append(missing, lang)
			}
		}

		data.Tools = append(data.Tools, AdminTool{
			Tool: tool,
			DisplayName: adminDisplayName(rows,
				func(t model.ToolTranslation) string { return t.Name }, tool.ComponentKey),
			Translations:         rows,
			MissingLanguages:     missing,
			TranslationsComplete: len(missing) == 0,
		})
	}

	return data, nil
}
