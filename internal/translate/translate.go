// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate wraps machine-translation providers behind a single
// Translator interface. Provider failures surface as ProviderError so
// callers can fall back to canonical text instead of aborting.
package translate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Translator translates one piece of text into the target language.
type Translator interface {
	// Translate returns the text translated into targetLang (ISO 639-1).
	// Empty or whitespace-only input returns "" without calling any provider.
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Supported provider identifiers.
const (
	ProviderOpenAI   = "openai"
	ProviderGroq     = "groq"
	ProviderDisabled = "disabled"
)

// ProviderError reports a failed provider call for one target language.
type ProviderError struct {
	Provider string
	Language string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("translate: provider %s failed for %s: %v", e.Provider, e.Language, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	Timeout  time.Duration
	// BaseURL overrides the provider endpoint. Used by tests.
	BaseURL string
}

// New builds a Translator for the configured provider. The disabled provider
// fails every call, which downgrades each fan-out to canonical-text fallback.
func New(cfg Config) (Translator, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return newChatTranslator(ProviderOpenAI, openAIBaseURL, cfg), nil
	case ProviderGroq:
		return newChatTranslator(ProviderGroq, groqBaseURL, cfg), nil
	case ProviderDisabled, "":
		return disabledTranslator{}, nil
	default:
		return nil, fmt.Errorf("translate: unknown provider %q", cfg.Provider)
	}
}

// disabledTranslator rejects every call. Non-empty text yields a
// ProviderError; empty text short-circuits like any other provider.
type disabledTranslator struct{}

func (disabledTranslator) Translate(_ context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return "", &ProviderError{
		Provider: ProviderDisabled,
		Language: targetLang,
		Err:      fmt.Errorf("no translation provider configured"),
	}
}
