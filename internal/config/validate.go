package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Server validation
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Server.Port),
		})
	}

	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Server.Bind != "" && !slices.Contains(validBinds, cfg.Server.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "server.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Server.Bind),
		})
	}
	if cfg.Server.Bind == "custom" && cfg.Server.CustomBindHost == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.customBindHost",
			Message: "required when bind: custom",
		})
	}
	if cfg.Server.TLS.Enabled && (cfg.Server.TLS.CertPath == "" || cfg.Server.TLS.KeyPath == "") {
		issues = append(issues, ValidationIssue{
			Path:    "server.tls",
			Message: "certPath and keyPath are required when TLS is enabled",
		})
	}

	// LLM validation
	validProviders := []string{"anthropic", "ollama", "mock"}
	if cfg.LLM.Provider != "" && !slices.Contains(validProviders, cfg.LLM.Provider) {
		issues = append(issues, ValidationIssue{
			Path:    "llm.provider",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.LLM.Provider),
		})
	}
	if cfg.LLM.Provider == "anthropic" && cfg.LLM.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "llm.apiKey",
			Message: "required for the anthropic provider",
		})
	}
	if cfg.LLM.MaxTokens < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "llm.maxTokens",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.LLM.MaxTokens),
		})
	}

	// Store validation
	validDrivers := []string{"sqlite", "memory"}
	if cfg.Store.Driver != "" && !slices.Contains(validDrivers, cfg.Store.Driver) {
		issues = append(issues, ValidationIssue{
			Path:    "store.driver",
			Message: fmt.Sprintf("must be one of %v, got %q", validDrivers, cfg.Store.Driver),
		})
	}

	// CRM validation (only configured sinks)
	if cfg.CRM.Webhook != nil {
		if cfg.CRM.Webhook.URL == "" {
			issues = append(issues, ValidationIssue{
				Path:    "crm.webhook.url",
				Message: "url is required",
			})
		} else if !strings.HasPrefix(cfg.CRM.Webhook.URL, "http://") && !strings.HasPrefix(cfg.CRM.Webhook.URL, "https://") {
			issues = append(issues, ValidationIssue{
				Path:    "crm.webhook.url",
				Message: fmt.Sprintf("must be an http(s) URL, got %q", cfg.CRM.Webhook.URL),
			})
		}
	}
	if cfg.CRM.Sheets != nil {
		if cfg.CRM.Sheets.CredentialsFile == "" {
			issues = append(issues, ValidationIssue{
				Path:    "crm.sheets.credentialsFile",
				Message: "credentialsFile is required",
			})
		}
		if cfg.CRM.Sheets.SpreadsheetID == "" {
			issues = append(issues, ValidationIssue{
				Path:    "crm.sheets.spreadsheetId",
				Message: "spreadsheetId is required",
			})
		}
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}
	if cfg.Logging.ConsoleLevel != "" && !slices.Contains(validLogLevels, cfg.Logging.ConsoleLevel) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleLevel",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.ConsoleLevel),
		})
	}
	validConsoleStyles := []string{"pretty", "compact", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	return issues
}
