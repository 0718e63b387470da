package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8710,
			Bind: "loopback",
		},
		LLM: LLMConfig{
			Provider:  "anthropic",
			Model:     "claude-3-5-haiku-latest",
			MaxTokens: 512,
		},
		Engine: EngineConfig{
			AgencyName:     "SoftwareLab",
			ServiceCatalog: "web development, mobile apps, business automation",
		},
		Store: StoreConfig{
			Driver: "sqlite",
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleLevel: "info",
			ConsoleStyle: "pretty",
		},
	}
}
