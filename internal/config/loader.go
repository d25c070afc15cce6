package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so secrets can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.OpenAI.APIKey = expandEnvVars(cfg.OpenAI.APIKey)
	cfg.Chatwoot.AccessToken = expandEnvVars(cfg.Chatwoot.AccessToken)
	cfg.QuoteAPI.Ref = expandEnvVars(cfg.QuoteAPI.Ref)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o"
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.MaxTokens == 0 {
		cfg.OpenAI.MaxTokens = 1024
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides reads QUOTEBOT_* environment variables and overrides
// config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QUOTEBOT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("QUOTEBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("QUOTEBOT_OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("QUOTEBOT_OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("QUOTEBOT_CHATWOOT_BASE_URL"); v != "" {
		cfg.Chatwoot.BaseURL = v
	}
	if v := os.Getenv("QUOTEBOT_CHATWOOT_ACCESS_TOKEN"); v != "" {
		cfg.Chatwoot.AccessToken = v
	}
	if v := os.Getenv("QUOTEBOT_CHATWOOT_BOT_SENDER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Chatwoot.BotSenderID = id
		}
	}
	if v := os.Getenv("QUOTEBOT_QUOTE_API_BASE_URL"); v != "" {
		cfg.QuoteAPI.BaseURL = v
	}
	if v := os.Getenv("QUOTEBOT_QUOTE_API_REF"); v != "" {
		cfg.QuoteAPI.Ref = v
	}
}

// SystemPrompt resolves the effective system prompt override: inline text
// wins, then a prompt file, then empty (use the built-in).
func (c *Config) SystemPrompt() (string, error) {
	if c.Prompt.System != "" {
		return c.Prompt.System, nil
	}
	if c.Prompt.SystemFile != "" {
		data, err := os.ReadFile(c.Prompt.SystemFile)
		if err != nil {
			return "", &ConfigError{Message: "reading prompt file: " + err.Error()}
		}
		return string(data), nil
	}
	return "", nil
}
