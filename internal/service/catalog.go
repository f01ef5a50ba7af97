// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/toolhub-vn/toolhub/internal/model"
	"github.com/toolhub-vn/toolhub/internal/store"
)

// DefaultSearchLimit caps search results.
const DefaultSearchLimit = 6

// RelatedLimit caps the related and suggested tool lists on a detail view.
const RelatedLimit = 3

// Localized is any per-language row the resolver can pick from.
type Localized interface {
	LocaleCode() string
}

// Resolve picks the best translation from a set: the requested locale first,
// then the fallback locale, then the lowest language code so the choice is
// deterministic regardless of storage order. ok is false only for empty sets.
func Resolve[T Localized](set []T, requested, fallback string) (T, bool) {
	var zero T
	if len(set) == 0 {
		return zero, false
	}
	for _, t := range set {
		if strings.EqualFold(t.LocaleCode(), requested) {
			return t, true
		}
	}
	for _, t := range set {
		if strings.EqualFold(t.LocaleCode(), fallback) {
			return t, true
		}
	}
	best := set[0]
	for _, t := range set[1:] {
		if t.LocaleCode() < best.LocaleCode() {
			best = t
		}
	}
	return best, true
}

// ToolView is a tool rendered for one locale.
type ToolView struct {
	ID           int64        `json:"id"`
	Slug         string       `json:"slug"`
	CategoryID   int64        `json:"category_id"`
	ComponentKey string       `json:"component_key"`
	Language     string       `json:"language"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Content      string       `json:"content,omitempty"`
	IsPublished  bool         `json:"is_published"`
	PublishedAt  sql.NullTime `json:"published_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ToolDetail is a tool view plus its cross-links.
type ToolDetail struct {
	ToolView
	Related   []ToolView `json:"related"`
	Suggested []ToolView `json:"suggested"`
}

// CategoryView is a category rendered for one locale.
type CategoryView struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	Language    string `json:"language"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ToolCount   int    `json:"tool_count"`
}

// CategoryDetail is a category view plus its published tools.
type CategoryDetail struct {
	CategoryView
	Tools []ToolView `json:"tools"`
}

// localizeTool renders one tool for a locale. A tool with no translation rows
// at all still renders; its name falls back to the component key so the
// catalogue never shows a blank entry.
func localizeTool(tool model.Tool, translations []model.ToolTranslation, locale string) ToolView {
	view := ToolView{
		ID:           tool.ID,
		Slug:         tool.Slug,
		CategoryID:   tool.CategoryID,
		ComponentKey: tool.ComponentKey,
		Language:     locale,
		Name:         tool.ComponentKey,
		IsPublished:  tool.IsPublished,
		PublishedAt:  tool.PublishedAt,
		CreatedAt:    tool.CreatedAt,
	}
	if tr, ok := Resolve(translations, locale, model.DefaultLanguage); ok {
		view.Language = tr.Language
		if tr.Name != "" {
			view.Name = tr.Name
		}
		view.Description = tr.Description
		view.Content = tr.Content
	}
	return view
}

func localizeCategory(category model.Category, translations []model.CategoryTranslation, locale string) CategoryView {
	view := CategoryView{
		ID:       category.ID,
		Slug:     category.Slug,
		Language: locale,
		Name:     category.Slug,
	}
	if tr, ok := Resolve(translations, locale, model.DefaultLanguage); ok {
		view.Language = tr.Language
		if tr.Name != "" {
			view.Name = tr.Name
		}
		view.Description = tr.Description
	}
	return view
}

// newestFirst sorts tools by creation time descending, newest first, with the
// ID as a tie breaker so equal timestamps still order deterministically.
func newestFirst(tools []model.Tool) []model.Tool {
	sorted := make([]model.Tool, len(tools))
	copy(sorted, tools)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	return sorted
}

// relatedTools returns up to limit published tools from the same category,
// excluding the tool itself, newest first.
func relatedTools(all []model.Tool, self model.Tool, limit int) []model.Tool {
	var related []model.Tool
	for _, t := range newestFirst(all) {
		if t.ID == self.ID || !t.IsPublished || t.CategoryID != self.CategoryID {
			continue
		}
		related = append(related, t)
		if len(related) == limit {
			break
		}
	}
	return related
}

// suggestedTools returns up to limit published tools from other categories,
// newest first.
func suggestedTools(all []model.Tool, self model.Tool, limit int) []model.Tool {
	var suggested []model.Tool
	for _, t := range newestFirst(all) {
		if t.ID == self.ID || !t.IsPublished || t.CategoryID == self.CategoryID {
			continue
		}
		suggested = append(suggested, t)
		if len(suggested) == limit {
			break
		}
	}
	return suggested
}

// searchTools filters localized views by a case-insensitive substring match
// on name, description, and slug. An empty query matches nothing.
func searchTools(views []ToolView, query string, limit int) []ToolView {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return []ToolView{}
	}
	matches := make([]ToolView, 0, limit)
	for _, v := range views {
		if strings.Contains(strings.ToLower(v.Name), query) ||
			strings.Contains(strings.ToLower(v.Description), query) ||
			strings.Contains(strings.ToLower(v.Slug), query) {
			matches = append(matches, v)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches
}

// Catalog serves the localized public read model.
type Catalog struct {
	queries *store.Queries
}

// NewCatalog returns a Catalog over the given queries.
func NewCatalog(queries *store.Queries) *Catalog {
	return &Catalog{queries: queries}
}

// listLanguages are the languages worth loading for list views: the requested
// locale plus the site fallback.
func listLanguages(locale string) []string {
	if locale == model.DefaultLanguage {
		return []string{model.DefaultLanguage}
	}
	return []string{locale, model.DefaultLanguage}
}

func groupToolTranslations(rows []model.ToolTranslation) map[int64][]model.ToolTranslation {
	grouped := make(map[int64][]model.ToolTranslation)
	for _, row := range rows {
		grouped[row.ToolID] = append(grouped[row.ToolID], row)
	}
	return grouped
}

func groupCategoryTranslations(rows []model.CategoryTranslation) map[int64][]model.CategoryTranslation {
	grouped := make(map[int64][]model.CategoryTranslation)
	for _, row := range rows {
		grouped[row.CategoryID] = append(grouped[row.CategoryID], row)
	}
	return grouped
}

// ListPublishedTools returns published tools rendered for the locale, newest
// first. A limit of 0 means no limit.
func (c *Catalog) ListPublishedTools(ctx context.Context, locale string, limit int) ([]ToolView, error) {
	var (
		tools        []model.Tool
		translations []model.ToolTranslation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tools, err = c.queries.ListPublishedTools(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		translations, err = c.queries.ListToolTranslationsByLanguages(gctx, listLanguages(locale))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	grouped := groupToolTranslations(translations)
	views := make([]ToolView, 0, len(tools))
	for _, tool := range newestFirst(tools) {
		views = append(views, localizeTool(tool, grouped[tool.ID], locale))
		if limit > 0 && len(views) == limit {
			break
		}
	}
	return views, nil
}

// GetToolBySlug returns one published tool with its related and suggested
// cross-links, all rendered for the locale.
func (c *Catalog) GetToolBySlug(ctx context.Context, slug, locale string) (ToolDetail, error) {
	tool, err := c.queries.GetToolBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return ToolDetail{}, &NotFoundError{Resource: "tool", Key: slug}
	}
	if err != nil {
		return ToolDetail{}, err
	}
	if !tool.IsPublished {
		return ToolDetail{}, &NotFoundError{Resource: "tool", Key: slug}
	}

	var (
		translations []model.ToolTranslation
		allTools     []model.Tool
		linkRows     []model.ToolTranslation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		translations, err = c.queries.ListToolTranslations(gctx, tool.ID)
		return err
	})
	g.Go(func() error {
		var err error
		allTools, err = c.queries.ListPublishedTools(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		linkRows, err = c.queries.ListToolTranslationsByLanguages(gctx, listLanguages(locale))
		return err
	})
	if err := g.Wait(); err != nil {
		return ToolDetail{}, err
	}

	grouped := groupToolTranslations(linkRows)
	localizeAll := func(tools []model.Tool) []ToolView {
		views := make([]ToolView, 0, len(tools))
		for _, t := range tools {
			views = append(views, localizeTool(t, grouped[t.ID], locale))
		}
		return views
	}

	return ToolDetail{
		ToolView:  localizeTool(tool, translations, locale),
		Related:   localizeAll(relatedTools(allTools, tool, RelatedLimit)),
		Suggested: localizeAll(suggestedTools(allTools, tool, RelatedLimit)),
	}, nil
}

// ListCategories returns categories that own at least one published tool,
// ordered by the creation time of their newest published tool. A category
// whose tools are all drafts is invisible to the public site.
func (c *Catalog) ListCategories(ctx context.Context, locale string) ([]CategoryView, error) {
	var (
		categories   []model.Category
		tools        []model.Tool
		translations []model.CategoryTranslation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = c.queries.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tools, err = c.queries.ListPublishedTools(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		translations, err = c.queries.ListAllCategoryTranslations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	newest := make(map[int64]model.Tool)
	counts := make(map[int64]int)
	for _, tool := range newestFirst(tools) {
		counts[tool.CategoryID]++
		if _, ok := newest[tool.CategoryID]; !ok {
			newest[tool.CategoryID] = tool
		}
	}

	visible := make([]model.Category, 0, len(categories))
	for _, cat := range categories {
		if counts[cat.ID] > 0 {
			visible = append(visible, cat)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		a, b := newest[visible[i].ID], newest[visible[j].ID]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	grouped := groupCategoryTranslations(translations)
	views := make([]CategoryView, 0, len(visible))
	for _, cat := range visible {
		view := localizeCategory(cat, grouped[cat.ID], locale)
		view.ToolCount = counts[cat.ID]
		views = append(views, view)
	}
	return views, nil
}

// GetCategoryBySlug returns one category with its published tools rendered
// for the locale, newest first.
func (c *Catalog) GetCategoryBySlug(ctx context.Context, slug, locale string) (CategoryDetail, error) {
	category, err := c.queries.GetCategoryBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return CategoryDetail{}, &NotFoundError{Resource: "category", Key: slug}
	}
	if err != nil {
		return CategoryDetail{}, err
	}

	var (
		translations []model.CategoryTranslation
		tools        []model.Tool
		toolRows     []model.ToolTranslation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		translations, err = c.queries.ListCategoryTranslations(gctx, category.ID)
		return err
	})
	g.Go(func() error {
		var err error
		tools, err = c.queries.ListPublishedToolsByCategory(gctx, category.ID)
		return err
	})
	g.Go(func() error {
		var err error
		toolRows, err = c.queries.ListToolTranslationsByLanguages(gctx, listLanguages(locale))
		return err
	})
	if err := g.Wait(); err != nil {
		return CategoryDetail{}, err
	}

	grouped := groupToolTranslations(toolRows)
	views := make([]ToolView, 0, len(tools))
	for _, tool := range newestFirst(tools) {
		views = append(views, localizeTool(tool, grouped[tool.ID], locale))
	}

	view := localizeCategory(category, translations, locale)
	view.ToolCount = len(views)
	return CategoryDetail{CategoryView: view, Tools: views}, nil
}

// Search returns published tools matching the query in the given locale,
// newest first, capped at limit (DefaultSearchLimit when limit is 0).
// Queries shorter than one character return an empty result.
func (c *Catalog) Search(ctx context.Context, query, locale string, limit int) ([]ToolView, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if strings.TrimSpace(query) == "" {
		return []ToolView{}, nil
	}

	views, err := c.ListPublishedTools(ctx, locale, 0)
	if err != nil {
		return nil, err
	}
	return searchTools(views, query, limit), nil
}
