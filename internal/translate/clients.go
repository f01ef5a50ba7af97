// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/toolhub-vn/toolhub/internal/model"
)

const (
	defaultTimeout = 120 * time.Second

	openAIBaseURL = "https://api.openai.com/v1"
	// Groq exposes an OpenAI-compatible API
	groqBaseURL = "https://api.groq.com/openai/v1"
)

// chatTranslator implements Translator on top of an OpenAI-compatible
// chat-completions endpoint.
type chatTranslator struct {
	provider string
	baseURL  string
	apiKey   string
	model    string
	client   *http.Client
}

func newChatTranslator(provider, baseURL string, cfg Config) *chatTranslator {
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	return &chatTranslator{
		provider: provider,
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *chatTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	system := fmt.Sprintf(
		"You are a professional translator. Translate the user's text into %s. "+
			"Preserve HTML markup and placeholders exactly. Return only the translation, nothing else.",
		model.LanguageName(targetLang))

	body := map[string]any{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: text},
		},
		"temperature": 0.2,
	}

	respBody, err := c.doJSONRequest(ctx, c.baseURL+"/chat/completions", body)
	if err != nil {
		return "", &ProviderError{Provider: c.provider, Language: targetLang, Err: err}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &ProviderError{Provider: c.provider, Language: targetLang, Err: fmt.Errorf("decode: %w", err)}
	}
	if len(result.Choices) == 0 {
		return "", &ProviderError{Provider: c.provider, Language: targetLang, Err: fmt.Errorf("no choices returned")}
	}

	translated := strings.TrimSpace(result.Choices[0].Message.Content)
	if translated == "" {
		return "", &ProviderError{Provider: c.provider, Language: targetLang, Err: fmt.Errorf("empty translation returned")}
	}
	return translated, nil
}

// doJSONRequest performs a JSON HTTP request with Bearer token auth (OpenAI/Groq compatible).
func (c *chatTranslator) doJSONRequest(ctx context.Context, url string, body any) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
