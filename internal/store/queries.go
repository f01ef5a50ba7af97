// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/toolhub-vn/toolhub/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run inside
// or outside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries wraps a database handle with typed catalogue queries.
type Queries struct {
	db DBTX
}

// New returns a Queries bound to the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const categoryColumns = "id, slug, canonical_language, created_at, updated_at"

func scanCategory(row interface{ Scan(...interface{}) error }) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Slug, &c.CanonicalLanguage, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateCategoryParams holds the insert parameters for a category.
type CreateCategoryParams struct {
	Slug              string
	CanonicalLanguage string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreateCategory inserts a category and returns the stored row.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO categories (slug, canonical_language, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING `+categoryColumns,
		arg.Slug, arg.CanonicalLanguage, arg.CreatedAt, arg.UpdatedAt)
	return scanCategory(row)
}

// GetCategoryByID fetches a category by primary key.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	return scanCategory(row)
}

// GetCategoryBySlug fetches a category by its unique slug.
func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE slug = ?", slug)
	return scanCategory(row)
}

// CategorySlugExists reports whether a category with the slug already exists.
func (q *Queries) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE slug = ?", slug).Scan(&count)
	return count > 0, err
}

// ListCategories returns all categories ordered by creation time, newest first.
func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteCategory removes a category. Owned translation rows cascade; tools
// referencing it make the delete fail on the foreign key.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	return err
}

// CountToolsForCategory returns the number of tools owned by a category.
func (q *Queries) CountToolsForCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tools WHERE category_id = ?", categoryID).Scan(&count)
	return count, err
}

const categoryTranslationColumns = "id, category_id, language, name, description, fallback_fields, created_at"

func scanCategoryTranslation(row interface{ Scan(...interface{}) error }) (model.CategoryTranslation, error) {
	var t model.CategoryTranslation
	err := row.Scan(&t.ID, &t.CategoryID, &t.Language, &t.Name, &t.Description, &t.FallbackFields, &t.CreatedAt)
	return t, err
}

// CreateCategoryTranslationParams holds the insert parameters for one
// per-language category row.
type CreateCategoryTranslationParams struct {
	CategoryID     int64
	Language       string
	Name           string
	Description    string
	FallbackFields string
	CreatedAt      time.Time
}

// CreateCategoryTranslation inserts one per-language category row.
func (q *Queries) CreateCategoryTranslation(ctx context.Context, arg CreateCategoryTranslationParams) (model.CategoryTranslation, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO category_translations (category_id, language, name, description, fallback_fields, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+categoryTranslationColumns,
		arg.CategoryID, arg.Language, arg.Name, arg.Description, arg.FallbackFields, arg.CreatedAt)
	return scanCategoryTranslation(row)
}

// ListCategoryTranslations returns all translation rows of one category.
func (q *Queries) ListCategoryTranslations(ctx context.Context, categoryID int64) ([]model.CategoryTranslation, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+categoryTranslationColumns+" FROM category_translations WHERE category_id = ? ORDER BY language",
		categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategoryTranslations(rows)
}

// ListAllCategoryTranslations returns the translation rows of every category.
func (q *Queries) ListAllCategoryTranslations(ctx context.Context) ([]model.CategoryTranslation, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+categoryTranslationColumns+" FROM category_translations ORDER BY category_id, language")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategoryTranslations(rows)
}

func collectCategoryTranslations(rows *sql.Rows) ([]model.CategoryTranslation, error) {
	var translations []model.CategoryTranslation
	for rows.Next() {
		t, err := scanCategoryTranslation(rows)
		if err != nil {
			return nil, err
		}
		translations = append(translations, t)
	}
	return translations, rows.Err()
}

const toolColumns = "id, slug, category_id, component_key, canonical_language, is_published, published_at, created_at, updated_at"

func scanTool(row interface{ Scan(...interface{}) error }) (model.Tool, error) {
	var t model.Tool
	err := row.Scan(&t.ID, &t.Slug, &t.CategoryID, &t.ComponentKey, &t.CanonicalLanguage,
		&t.IsPublished, &t.PublishedAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// CreateToolParams holds the insert parameters for a tool.
type CreateToolParams struct {
	Slug              string
	CategoryID        int64
	ComponentKey      string
	CanonicalLanguage string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreateTool inserts a tool in the unpublished state and returns the stored row.
func (q *Queries) CreateTool(ctx context.Context, arg CreateToolParams) (model.Tool, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO tools (slug, category_id, component_key, canonical_language, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
		RETURNING `+toolColumns,
		arg.Slug, arg.CategoryID, arg.ComponentKey, arg.CanonicalLanguage, arg.CreatedAt, arg.UpdatedAt)
	return scanTool(row)
}

// GetToolByID fetches a tool by primary key.
func (q *Queries) GetToolByID(ctx context.Context, id int64) (model.Tool, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+toolColumns+" FROM tools WHERE id = ?", id)
	return scanTool(row)
}

// GetToolBySlug fetches a tool by its unique slug.
func (q *Queries) GetToolBySlug(ctx context.Context, slug string) (model.Tool, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+toolColumns+" FROM tools WHERE slug = ?", slug)
	return scanTool(row)
}

// ToolSlugExists reports whether a tool with the slug already exists.
func (q *Queries) ToolSlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tools WHERE slug = ?", slug).Scan(&count)
	return count > 0, err
}

// ListTools returns every tool regardless of publish state, newest first.
func (q *Queries) ListTools(ctx context.Context) ([]model.Tool, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+toolColumns+" FROM tools ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTools(rows)
}

// ListPublishedTools returns published tools, newest first.
func (q *Queries) ListPublishedTools(ctx context.Context) ([]model.Tool, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+toolColumns+" FROM tools WHERE is_published = 1 ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTools(rows)
}

// ListPublishedToolsByCategory returns published tools of one category, newest first.
func (q *Queries) ListPublishedToolsByCategory(ctx context.Context, categoryID int64) ([]model.Tool, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+toolColumns+" FROM tools WHERE is_published = 1 AND category_id = ? ORDER BY created_at DESC, id DESC",
		categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTools(rows)
}

func collectTools(rows *sql.Rows) ([]model.Tool, error) {
	var tools []model.Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

// SetToolPublishedParams holds the parameters for a publish state change.
type SetToolPublishedParams struct {
	ID          int64
	IsPublished bool
	PublishedAt sql.NullTime
	UpdatedAt   time.Time
}

// SetToolPublished updates the publish flag and returns the stored row.
func (q *Queries) SetToolPublished(ctx context.Context, arg SetToolPublishedParams) (model.Tool, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE tools
		SET is_published = ?, published_at = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+toolColumns,
		arg.IsPublished, arg.PublishedAt, arg.UpdatedAt, arg.ID)
	return scanTool(row)
}

// DeleteTool removes a tool. Its translation rows cascade.
func (q *Queries) DeleteTool(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM tools WHERE id = ?", id)
	return err
}

// CountTools returns the total number of tools.
func (q *Queries) CountTools(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tools").Scan(&count)
	return count, err
}

// CountPublishedTools returns the number of published tools.
func (q *Queries) CountPublishedTools(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tools WHERE is_published = 1").Scan(&count)
	return count, err
}

const toolTranslationColumns = "id, tool_id, language, name, description, content, fallback_fields, created_at"

func scanToolTranslation(row interface{ Scan(...interface{}) error }) (model.ToolTranslation, error) {
	var t model.ToolTranslation
	err := row.Scan(&t.ID, &t.ToolID, &t.Language, &t.Name, &t.Description, &t.Content, &t.FallbackFields, &t.CreatedAt)
	return t, err
}

// CreateToolTranslationParams holds the insert parameters for one
// per-language tool row.
type CreateToolTranslationParams struct {
	ToolID         int64
	Language       string
	Name           string
	Description    string
	Content        string
	FallbackFields string
	CreatedAt      time.Time
}

// CreateToolTranslation inserts one per-language tool row.
func (q *Queries) CreateToolTranslation(ctx context.Context, arg CreateToolTranslationParams) (model.ToolTranslation, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO tool_translations (tool_id, language, name, description, content, fallback_fields, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+toolTranslationColumns,
		arg.ToolID, arg.Language, arg.Name, arg.Description, arg.Content, arg.FallbackFields, arg.CreatedAt)
	return scanToolTranslation(row)
}

// ListToolTranslations returns all translation rows of one tool.
func (q *Queries) ListToolTranslations(ctx context.Context, toolID int64) ([]model.ToolTranslation, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+toolTranslationColumns+" FROM tool_translations WHERE tool_id = ? ORDER BY language",
		toolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectToolTranslations(rows)
}

// GetToolTranslation fetches one (tool, language) row.
func (q *Queries) GetToolTranslation(ctx context.Context, toolID int64, language string) (model.ToolTranslation, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+toolTranslationColumns+" FROM tool_translations WHERE tool_id = ? AND language = ?",
		toolID, language)
	return scanToolTranslation(row)
}

// ListAllToolTranslations returns the translation rows of every tool.
func (q *Queries) ListAllToolTranslations(ctx context.Context) ([]model.ToolTranslation, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+toolTranslationColumns+" FROM tool_translations ORDER BY tool_id, language")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectToolTranslations(rows)
}

// ListToolTranslationsByLanguages returns the translation rows of every tool
// restricted to the given languages. Used by list views that only need the
// requested locale plus the fallback.
func (q *Queries) ListToolTranslationsByLanguages(ctx context.Context, languages []string) ([]model.ToolTranslation, error) {
	if len(languages) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?, ", len(languages)-1) + "?"
	args := make([]interface{}, len(languages))
	for i, lang := range languages {
		args[i] = lang
	}
	rows, err := q.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM tool_translations WHERE language IN (%s) ORDER BY tool_id, language",
		toolTranslationColumns, placeholders), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectToolTranslations(rows)
}

func collectToolTranslations(rows *sql.Rows) ([]model.ToolTranslation, error) {
	var translations []model.ToolTranslation
	for rows.Next() {
		t, err := scanToolTranslation(rows)
		if err != nil {
			return nil, err
		}
		translations = append(translations, t)
	}
	return translations, rows.Err()
}

// ListToolTranslationLanguages returns the language codes that have a stored
// row for the tool, sorted ascending.
func (q *Queries) ListToolTranslationLanguages(ctx context.Context, toolID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT language FROM tool_translations WHERE tool_id = ? ORDER BY language", toolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var languages []string
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, err
		}
		languages = append(languages, lang)
	}
	return languages, rows.Err()
}
