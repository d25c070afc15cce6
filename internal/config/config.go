// Package config loads, defaults and validates the quotebot YAML
// configuration.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied. Credentials and
// the quoting-backend reference have no defaults: they must come from the
// config file or environment.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		OpenAI: OpenAIConfig{
			Model:     "gpt-4o",
			BaseURL:   "https://api.openai.com/v1",
			MaxTokens: 1024,
		},
		Chatwoot: ChatwootConfig{
			AutoOpen:        true,
			TypingIndicator: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
