package config

// Config is the root configuration for quotebot.
type Config struct {
	Server      ServerConfig      `yaml:"server,omitempty"`
	OpenAI      OpenAIConfig      `yaml:"openai,omitempty"`
	Chatwoot    ChatwootConfig    `yaml:"chatwoot,omitempty"`
	QuoteAPI    QuoteAPIConfig    `yaml:"quoteApi,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
	Transcripts TranscriptsConfig `yaml:"transcripts,omitempty"`
	Prompt      PromptConfig      `yaml:"prompt,omitempty"`
}

// ServerConfig controls the webhook HTTP server.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// OpenAIConfig configures the completion backend.
type OpenAIConfig struct {
	APIKey      string   `yaml:"apiKey,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	BaseURL     string   `yaml:"baseUrl,omitempty"` // OpenAI-compatible endpoint root
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// ChatwootConfig configures the helpdesk connection.
type ChatwootConfig struct {
	BaseURL         string `yaml:"baseUrl,omitempty"`
	AccessToken     string `yaml:"accessToken,omitempty"`
	BotSenderID     int64  `yaml:"botSenderId,omitempty"` // agent-bot sender id, for echo filtering
	AutoOpen        bool   `yaml:"autoOpen,omitempty"`
	TypingIndicator bool   `yaml:"typingIndicator,omitempty"`
}

// QuoteAPIConfig configures the vehicle quoting backend.
type QuoteAPIConfig struct {
	BaseURL        string `yaml:"baseUrl,omitempty"`
	DealManagerURL string `yaml:"dealManagerUrl,omitempty"`
	Ref            string `yaml:"ref,omitempty"` // account-level session reference
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}

// TranscriptsConfig controls the daily JSONL transcript log.
type TranscriptsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// PromptConfig overrides the built-in system prompt. At most one of System
// and SystemFile may be set.
type PromptConfig struct {
	System     string `yaml:"system,omitempty"`
	SystemFile string `yaml:"systemFile,omitempty"`
}
