package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// validConfig returns a config that passes validation.
func validConfig() Config {
	cfg := Defaults()
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Chatwoot.BaseURL = "https://desk.example.com"
	cfg.Chatwoot.AccessToken = "tok"
	cfg.QuoteAPI.BaseURL = "https://quote.example.com"
	cfg.QuoteAPI.DealManagerURL = "https://deals.example.com"
	cfg.QuoteAPI.Ref = "acct-ref"
	return cfg
}

func issuePaths(issues []ValidationIssue) []string {
	paths := make([]string, 0, len(issues))
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	return paths
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := validConfig()
	assert.Empty(t, Validate(&cfg))
}

func TestValidateRequiresCredentials(t *testing.T) {
	cfg := Defaults()
	paths := issuePaths(Validate(&cfg))
	assert.Contains(t, paths, "openai.apiKey")
	assert.Contains(t, paths, "chatwoot.baseUrl")
	assert.Contains(t, paths, "chatwoot.accessToken")
	assert.Contains(t, paths, "quoteApi.baseUrl")
	assert.Contains(t, paths, "quoteApi.dealManagerUrl")
	assert.Contains(t, paths, "quoteApi.ref")
}

func TestValidatePortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	assert.Contains(t, issuePaths(Validate(&cfg)), "server.port")
}

func TestValidateTemperatureRange(t *testing.T) {
	cfg := validConfig()
	temp := 3.5
	cfg.OpenAI.Temperature = &temp
	assert.Contains(t, issuePaths(Validate(&cfg)), "openai.temperature")

	temp = 0.7
	assert.Empty(t, Validate(&cfg))
}

func TestValidateLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	assert.Contains(t, issuePaths(Validate(&cfg)), "logging.level")
}

func TestValidateTranscriptsDir(t *testing.T) {
	cfg := validConfig()
	cfg.Transcripts.Enabled = true
	assert.Contains(t, issuePaths(Validate(&cfg)), "transcripts.dir")

	cfg.Transcripts.Dir = "/var/lib/quotebot/transcripts"
	assert.Empty(t, Validate(&cfg))
}

func TestValidatePromptExclusivity(t *testing.T) {
	cfg := validConfig()
	cfg.Prompt.System = "inline"
	cfg.Prompt.SystemFile = "prompt.txt"
	assert.Contains(t, issuePaths(Validate(&cfg)), "prompt")
}
