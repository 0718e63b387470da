package config

// Config is the root configuration for leadqual.
type Config struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	LLM     LLMConfig     `yaml:"llm,omitempty"`
	Engine  EngineConfig  `yaml:"engine,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	CRM     CRMConfig     `yaml:"crm,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ServerConfig controls the HTTP/WebSocket server.
type ServerConfig struct {
	Port           int       `yaml:"port,omitempty"`
	Bind           string    `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string    `yaml:"customBindHost,omitempty"`
	AllowedOrigins []string  `yaml:"allowedOrigins,omitempty"`
	APIToken       string    `yaml:"apiToken,omitempty"` // bearer token for the leads API
	TLS            ServerTLS `yaml:"tls,omitempty"`
}

// ServerTLS configures TLS for the server.
type ServerTLS struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// LLMConfig selects and configures the completion provider.
type LLMConfig struct {
	Provider    string   `yaml:"provider,omitempty"` // "anthropic" | "ollama" | "mock"
	APIKey      string   `yaml:"apiKey,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	Endpoint    string   `yaml:"endpoint,omitempty"` // custom API endpoint (for Ollama or proxies)
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// EngineConfig tunes the qualification engine's presentation.
type EngineConfig struct {
	AgencyName     string `yaml:"agencyName,omitempty"`
	ServiceCatalog string `yaml:"serviceCatalog,omitempty"`
	FallbackReply  string `yaml:"fallbackReply,omitempty"`
	RulesFile      string `yaml:"rulesFile,omitempty"` // optional YAML rule vocabulary override
}

// StoreConfig selects session and lead persistence.
type StoreConfig struct {
	Driver string `yaml:"driver,omitempty"` // "sqlite" | "memory"
	Path   string `yaml:"path,omitempty"`   // sqlite database path; defaults under the data dir
}

// CRMConfig configures where created leads are delivered. The local store is
// always the first sink; webhook and sheets sinks are added when configured.
type CRMConfig struct {
	Webhook *WebhookSink `yaml:"webhook,omitempty"`
	Sheets  *SheetsSink  `yaml:"sheets,omitempty"`
}

// WebhookSink posts each lead as JSON to an external endpoint.
type WebhookSink struct {
	URL       string `yaml:"url"`
	Secret    string `yaml:"secret,omitempty"` // sent as X-Webhook-Secret
	TimeoutMS int    `yaml:"timeoutMs,omitempty"`
}

// SheetsSink appends each lead as a row in a Google Sheets spreadsheet.
type SheetsSink struct {
	CredentialsFile string `yaml:"credentialsFile"`
	SpreadsheetID   string `yaml:"spreadsheetId"`
	SheetName       string `yaml:"sheetName,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleLevel string `yaml:"consoleLevel,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}
