// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the catalogue core: the translation fan-out
// writer, the publish state machine, and the localized read model.
package service

import (
	"fmt"
	"strings"
)

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ConflictError reports a uniqueness or referential-integrity violation.
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists or is still referenced", e.Resource, e.Field, e.Value)
}

// ValidationError reports invalid submission fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IncompleteFanoutError reports a tool whose translation fan-out cannot be
// healed because the canonical row itself is missing.
type IncompleteFanoutError struct {
	ToolID  int64
	Missing []string
}

func (e *IncompleteFanoutError) Error() string {
	return fmt.Sprintf("tool %d has incomplete translations (missing %s)", e.ToolID, strings.Join(e.Missing, ", "))
}
