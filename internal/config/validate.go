package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid. Credentials
// are mandatory: the bot refuses to start without them rather than falling
// back to baked-in values.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Server.Port),
		})
	}

	if cfg.OpenAI.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "openai.apiKey",
			Message: "api key is required",
		})
	}
	if cfg.OpenAI.Model == "" {
		issues = append(issues, ValidationIssue{
			Path:    "openai.model",
			Message: "model is required",
		})
	}
	if cfg.OpenAI.Temperature != nil {
		if t := *cfg.OpenAI.Temperature; t < 0 || t > 2 {
			issues = append(issues, ValidationIssue{
				Path:    "openai.temperature",
				Message: fmt.Sprintf("must be between 0 and 2, got %g", t),
			})
		}
	}
	if cfg.OpenAI.MaxTokens < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "openai.maxTokens",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.OpenAI.MaxTokens),
		})
	}

	if cfg.Chatwoot.BaseURL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "chatwoot.baseUrl",
			Message: "base url is required",
		})
	}
	if cfg.Chatwoot.AccessToken == "" {
		issues = append(issues, ValidationIssue{
			Path:    "chatwoot.accessToken",
			Message: "access token is required",
		})
	}

	if cfg.QuoteAPI.BaseURL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "quoteApi.baseUrl",
			Message: "base url is required",
		})
	}
	if cfg.QuoteAPI.DealManagerURL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "quoteApi.dealManagerUrl",
			Message: "deal manager url is required",
		})
	}
	if cfg.QuoteAPI.Ref == "" {
		issues = append(issues, ValidationIssue{
			Path:    "quoteApi.ref",
			Message: "account session reference is required",
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	if cfg.Transcripts.Enabled && cfg.Transcripts.Dir == "" {
		issues = append(issues, ValidationIssue{
			Path:    "transcripts.dir",
			Message: "dir is required when transcripts are enabled",
		})
	}

	if cfg.Prompt.System != "" && cfg.Prompt.SystemFile != "" {
		issues = append(issues, ValidationIssue{
			Path:    "prompt",
			Message: "system and systemFile are mutually exclusive",
		})
	}

	return issues
}
