// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/toolhub-vn/toolhub/internal/model"
	"github.com/toolhub-vn/toolhub/internal/store"
)

// SetPublished flips a tool's publish flag. The operation is idempotent:
// publishing a published tool or unpublishing a draft returns the current
// row unchanged. PublishedAt is set on the first publish and kept forever
// after, it records history rather than governing visibility.
func (f *Fanout) SetPublished(ctx context.Context, toolID int64, publish bool) (model.Tool, error) {
	tool, err := f.queries.GetToolByID(ctx, toolID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tool{}, &NotFoundError{Resource: "tool", Key: fmt.Sprint(toolID)}
	}
	if err != nil {
		return model.Tool{}, err
	}

	if tool.IsPublished == publish {
		return tool, nil
	}

	now := time.Now()
	publishedAt := tool.PublishedAt
	if publish && !publishedAt.Valid {
		publishedAt = sql.NullTime{Time: now, Valid: true}
	}

	updated, err := f.queries.SetToolPublished(ctx, store.SetToolPublishedParams{
		ID:          toolID,
		IsPublished: publish,
		PublishedAt: publishedAt,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Tool{}, err
	}

	slog.Info("changed publish state", "tool_id", toolID, "published", publish)
	return updated, nil
}

// DeleteTool removes a tool and all of its translation rows. Published tools
// delete the same as drafts.
func (f *Fanout) DeleteTool(ctx context.Context, toolID int64) error {
	if _, err := f.queries.GetToolByID(ctx, toolID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &NotFoundError{Resource: "tool", Key: fmt.Sprint(toolID)}
		}
		return err
	}

	if err := f.queries.DeleteTool(ctx, toolID); err != nil {
		return err
	}

	slog.Info("deleted tool", "tool_id", toolID)
	return nil
}

// DeleteCategory removes a category and its translation rows. A category
// that still owns tools cannot be deleted.
func (f *Fanout) DeleteCategory(ctx context.Context, categoryID int64) error {
	category, err := f.queries.GetCategoryByID(ctx, categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: "category", Key: fmt.Sprint(categoryID)}
	}
	if err != nil {
		return err
	}

	count, err := f.queries.CountToolsForCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return &ConflictError{Resource: "category", Field: "slug", Value: category.Slug}
	}

	if err := f.queries.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}

	slog.Info("deleted category", "category_id", categoryID, "slug", category.Slug)
	return nil
}
