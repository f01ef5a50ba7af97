// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers for the tool catalogue.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/toolhub-vn/toolhub/internal/registry"
	"github.com/toolhub-vn/toolhub/internal/service"
	"github.com/toolhub-vn/toolhub/internal/store"
	"github.com/toolhub-vn/toolhub/internal/translate"
	"github.com/toolhub-vn/toolhub/internal/version"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db       *sql.DB
	queries  *store.Queries
	catalog  *service.Catalog
	fanout   *service.Fanout
	registry registry.Registry
	baseURL  string
	version  version.Info
}

// SetVersion sets the build version reported by the status endpoint.
func (h *Handler) SetVersion(info version.Info) {
	h.version = info
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, translator translate.Translator, reg registry.Registry, baseURL string) *Handler {
	return &Handler{
		db:       db,
		queries:  store.New(db),
		catalog:  service.NewCatalog(store.New(db)),
		fanout:   service.NewFanout(db, translator, reg),
		registry: reg,
		baseURL:  baseURL,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains listing metadata.
type Meta struct {
	Total  int64  `json:"total,omitempty"`
	Locale string `json:"locale,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeServiceError maps service error types onto the API error taxonomy.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		valErr      *service.ValidationError
		conflictErr *service.ConflictError
		notFoundErr *service.NotFoundError
		fanoutErr   *service.IncompleteFanoutError
	)

	switch {
	case errors.As(err, &valErr):
		WriteValidationError(w, valErr.Fields)
	case errors.As(err, &conflictErr):
		WriteConflict(w, conflictErr.Error())
	case errors.As(err, &notFoundErr):
		WriteNotFound(w, notFoundErr.Error())
	case errors.As(err, &fanoutErr):
		WriteConflict(w, fanoutErr.Error())
	default:
		slog.Error("api request failed", "error", err)
		WriteInternalError(w, "Internal server error")
	}
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{
		Status:  "ok",
		Version: h.version.Version,
	}, nil)
}

// Health reports whether the database answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "unhealthy", "Database unreachable", nil)
		return
	}
	WriteSuccess(w, StatusResponse{Status: "ok"}, nil)
}

// Liveness reports that the process is up. It never touches the database, a
// stuck store must not get the process restarted by the orchestrator.
func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{Status: "alive"}, nil)
}

// Readiness reports whether the service can take traffic.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "not_ready", "Database unreachable", nil)
		return
	}
	WriteSuccess(w, StatusResponse{Status: "ready"}, nil)
}
