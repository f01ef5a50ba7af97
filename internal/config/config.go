// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakTokens contains default/example tokens that must be rejected.
var knownWeakTokens = []string{
	"change-me-to-a-long-admin-token!",
	"REPLACE_WITH_YOUR_OWN_ADMIN_TOKEN",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"TOOLHUB_DB_PATH" envDefault:"./data/toolhub.db"`
	AdminToken string `env:"TOOLHUB_ADMIN_TOKEN,required"`
	ServerHost string `env:"TOOLHUB_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"TOOLHUB_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"TOOLHUB_ENV" envDefault:"development"`
	LogLevel   string `env:"TOOLHUB_LOG_LEVEL" envDefault:"info"`

	// Public base URL used for hreflang alternate links
	BaseURL string `env:"TOOLHUB_BASE_URL" envDefault:"https://toolhub.vn"`

	// Translation provider configuration
	TranslateProvider string        `env:"TOOLHUB_TRANSLATE_PROVIDER" envDefault:"disabled"` // openai, groq, or disabled
	TranslateAPIKey   string        `env:"TOOLHUB_TRANSLATE_API_KEY"`
	TranslateModel    string        `env:"TOOLHUB_TRANSLATE_MODEL" envDefault:"gpt-4o-mini"`
	TranslateTimeout  time.Duration `env:"TOOLHUB_TRANSLATE_TIMEOUT" envDefault:"120s"`

	// Seeding configuration
	DoSeed bool `env:"TOOLHUB_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// TranslateEnabled returns true if a real translation provider is configured.
func (c Config) TranslateEnabled() bool {
	return c.TranslateProvider != "" && c.TranslateProvider != "disabled"
}

// MinAdminTokenLength is the minimum required length for the admin token.
const MinAdminTokenLength = 16

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate admin token length
	if len(cfg.AdminToken) < MinAdminTokenLength {
		return nil, fmt.Errorf("TOOLHUB_ADMIN_TOKEN must be at least %d bytes long, got %d bytes; "+
			"generate a secure token with: openssl rand -base64 32",
			MinAdminTokenLength, len(cfg.AdminToken))
	}

	// Reject known weak/default tokens
	for _, weak := range knownWeakTokens {
		if cfg.AdminToken == weak {
			return nil, fmt.Errorf("TOOLHUB_ADMIN_TOKEN is a known default value and must not be used; " +
				"generate a secure token with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy tokens
	if !hasMinimumEntropy(cfg.AdminToken) {
		slog.Warn("TOOLHUB_ADMIN_TOKEN has low character diversity; " +
			"consider generating a random token with: openssl rand -base64 32")
	}

	if cfg.TranslateEnabled() && cfg.TranslateAPIKey == "" {
		return nil, fmt.Errorf("TOOLHUB_TRANSLATE_API_KEY is required when TOOLHUB_TRANSLATE_PROVIDER is %q",
			cfg.TranslateProvider)
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

// hasMinimumEntropy checks that a token contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
