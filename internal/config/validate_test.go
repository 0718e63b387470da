package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.LLM.APIKey = "sk-test"
	return cfg
}

func issuePaths(issues []ValidationIssue) []string {
	paths := make([]string, len(issues))
	for i, iss := range issues {
		paths[i] = iss.Path
	}
	return paths
}

func TestValidate_DefaultsWithKeyAreValid(t *testing.T) {
	cfg := validConfig()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_PortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	assert.Contains(t, issuePaths(Validate(&cfg)), "server.port")
}

func TestValidate_BindEnum(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Bind = "tailnet"
	assert.Contains(t, issuePaths(Validate(&cfg)), "server.bind")
}

func TestValidate_CustomBindNeedsHost(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Bind = "custom"
	assert.Contains(t, issuePaths(Validate(&cfg)), "server.customBindHost")
}

func TestValidate_TLSNeedsPaths(t *testing.T) {
	cfg := validConfig()
	cfg.Server.TLS.Enabled = true
	assert.Contains(t, issuePaths(Validate(&cfg)), "server.tls")
}

func TestValidate_AnthropicRequiresKey(t *testing.T) {
	cfg := Defaults()
	assert.Contains(t, issuePaths(Validate(&cfg)), "llm.apiKey")

	cfg.LLM.Provider = "ollama"
	assert.NotContains(t, issuePaths(Validate(&cfg)), "llm.apiKey")
}

func TestValidate_ProviderEnum(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = "gemini"
	assert.Contains(t, issuePaths(Validate(&cfg)), "llm.provider")
}

func TestValidate_StoreDriverEnum(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "postgres"
	assert.Contains(t, issuePaths(Validate(&cfg)), "store.driver")
}

func TestValidate_WebhookURL(t *testing.T) {
	cfg := validConfig()
	cfg.CRM.Webhook = &WebhookSink{}
	assert.Contains(t, issuePaths(Validate(&cfg)), "crm.webhook.url")

	cfg.CRM.Webhook.URL = "ftp://example.com"
	assert.Contains(t, issuePaths(Validate(&cfg)), "crm.webhook.url")

	cfg.CRM.Webhook.URL = "https://example.com/leads"
	assert.NotContains(t, issuePaths(Validate(&cfg)), "crm.webhook.url")
}

func TestValidate_SheetsRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.CRM.Sheets = &SheetsSink{}
	paths := issuePaths(Validate(&cfg))
	assert.Contains(t, paths, "crm.sheets.credentialsFile")
	assert.Contains(t, paths, "crm.sheets.spreadsheetId")
}

func TestValidate_LogLevelEnum(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	assert.Contains(t, issuePaths(Validate(&cfg)), "logging.level")
}
