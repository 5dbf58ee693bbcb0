package config

import (
	"context"
	"time"
)

// Settings is the root configuration for an MCP Agent application.
// It provides type-safe access to all configuration values with validation.
//
// Sections that are always present (MCP, OTel, Logger, UsageTelemetry) are
// constructed with defaults even when no configuration file exists. Provider
// sections (Anthropic, OpenAI, ...) stay nil unless configured.
//
// Every section carries an Extra map capturing keys the schema does not
// declare. Unknown keys are preserved, never rejected, and re-emitted inline
// when the settings are serialized back to YAML.
type Settings struct {
	MCP             *MCPSettings            `koanf:"mcp"              json:"mcp,omitempty"              yaml:"mcp,omitempty"`
	ExecutionEngine string                  `koanf:"execution_engine" json:"execution_engine"           yaml:"execution_engine"           validate:"oneof=asyncio temporal" env:"EXECUTION_ENGINE"`
	Temporal        *TemporalSettings       `koanf:"temporal"         json:"temporal,omitempty"         yaml:"temporal,omitempty"`
	Anthropic       *AnthropicSettings      `koanf:"anthropic"        json:"anthropic,omitempty"        yaml:"anthropic,omitempty"`
	Bedrock         *BedrockSettings        `koanf:"bedrock"          json:"bedrock,omitempty"          yaml:"bedrock,omitempty"`
	Cohere          *CohereSettings         `koanf:"cohere"           json:"cohere,omitempty"           yaml:"cohere,omitempty"`
	OpenAI          *OpenAISettings         `koanf:"openai"           json:"openai,omitempty"           yaml:"openai,omitempty"`
	Azure           *AzureSettings          `koanf:"azure"            json:"azure,omitempty"            yaml:"azure,omitempty"`
	OTel            *OpenTelemetrySettings  `koanf:"otel"             json:"otel,omitempty"             yaml:"otel,omitempty"`
	Logger          *LoggerSettings         `koanf:"logger"           json:"logger,omitempty"           yaml:"logger,omitempty"`
	UsageTelemetry  *UsageTelemetrySettings `koanf:"usage_telemetry"  json:"usage_telemetry,omitempty"  yaml:"usage_telemetry,omitempty"`
	Extra           map[string]any          `koanf:",remain"          json:"-"                          yaml:",inline"`
}

// MCPSettings configures all MCP servers available to the application.
type MCPSettings struct {
	Servers map[string]MCPServerSettings `koanf:"servers" json:"servers" yaml:"servers" validate:"dive"`
	Extra   map[string]any               `koanf:",remain" json:"-"       yaml:",inline"`
}

// MCPServerSettings configures an individual MCP server.
type MCPServerSettings struct {
	Name        string `koanf:"name"        json:"name,omitempty"        yaml:"name,omitempty"`
	Description string `koanf:"description" json:"description,omitempty" yaml:"description,omitempty"`

	// Transport selects the wire mechanism, stdio or sse.
	Transport string `koanf:"transport" json:"transport" yaml:"transport" validate:"omitempty,oneof=stdio sse"`

	// Command and Args launch the server process for stdio transport
	// (e.g. command "npx" with the package name in args).
	Command string   `koanf:"command" json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string `koanf:"args"    json:"args,omitempty"    yaml:"args,omitempty"`

	ReadTimeoutSeconds int    `koanf:"read_timeout_seconds" json:"read_timeout_seconds,omitempty" yaml:"read_timeout_seconds,omitempty" validate:"min=0"`
	URL                string `koanf:"url"                  json:"url,omitempty"                  yaml:"url,omitempty"`

	Auth  *MCPServerAuthSettings `koanf:"auth"  json:"auth,omitempty"  yaml:"auth,omitempty"`
	Roots []MCPRootSettings      `koanf:"roots" json:"roots,omitempty" yaml:"roots,omitempty" validate:"omitempty,dive"`

	// Env holds environment variables passed to the server process.
	Env map[string]string `koanf:"env" json:"env,omitempty" yaml:"env,omitempty"`

	Extra map[string]any `koanf:",remain" json:"-" yaml:",inline"`
}

// MCPServerAuthSettings configures authentication for a server.
type MCPServerAuthSettings struct {
	APIKey SensitiveString `koanf:"api_key" json:"api_key,omitempty" yaml:"api_key,omitempty" sensitive:"true"`
	Extra  map[string]any  `koanf:",remain" json:"-"                 yaml:",inline"`
}

// MCPRootSettings declares a root directory an MCP server has access to.
type MCPRootSettings struct {
	// URI identifying the root. The MCP specification requires a file://
	// scheme prefix.
	URI string `koanf:"uri" json:"uri" yaml:"uri" validate:"required,file_uri"`

	Name string `koanf:"name" json:"name,omitempty" yaml:"name,omitempty"`

	// ServerURIAlias is an alternate URI presented to the server, subject
	// to the same file:// rule when set.
	ServerURIAlias string `koanf:"server_uri_alias" json:"server_uri_alias,omitempty" yaml:"server_uri_alias,omitempty" validate:"omitempty,file_uri"`

	Extra map[string]any `koanf:",remain" json:"-" yaml:",inline"`
}

// AnthropicSettings configures Anthropic model access.
type AnthropicSettings struct {
	APIKey SensitiveString `koanf:"api_key" json:"api_key,omitempty" yaml:"api_key,omitempty" env:"ANTHROPIC__API_KEY" sensitive:"true"`
	Extra  map[string]any  `koanf:",remain" json:"-"                 yaml:",inline"`
}

// BedrockSettings configures AWS Bedrock model access.
type BedrockSettings struct {
	AWSAccessKeyID     string          `koanf:"aws_access_key_id"     json:"aws_access_key_id,omitempty"     yaml:"aws_access_key_id,omitempty"     env:"BEDROCK__AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey SensitiveString `koanf:"aws_secret_access_key" json:"aws_secret_access_key,omitempty" yaml:"aws_secret_access_key,omitempty" env:"BEDROCK__AWS_SECRET_ACCESS_KEY" sensitive:"true"`
	AWSSessionToken    SensitiveString `koanf:"aws_session_token"     json:"aws_session_token,omitempty"     yaml:"aws_session_token,omitempty"     env:"BEDROCK__AWS_SESSION_TOKEN"     sensitive:"true"`
	AWSRegion          string          `koanf:"aws_region"            json:"aws_region,omitempty"            yaml:"aws_region,omitempty"            env:"BEDROCK__AWS_REGION"`
	Extra              map[string]any  `koanf:",remain"               json:"-"                               yaml:",inline"`
}

// CohereSettings configures Cohere model access.
type CohereSettings struct {
	APIKey SensitiveString `koanf:"api_key" json:"api_key,omitempty" yaml:"api_key,omitempty" env:"COHERE__API_KEY" sensitive:"true"`
	Extra  map[string]any  `koanf:",remain" json:"-"                 yaml:",inline"`
}

// OpenAISettings configures OpenAI model access.
type OpenAISettings struct {
	APIKey          SensitiveString `koanf:"api_key"          json:"api_key,omitempty"  yaml:"api_key,omitempty"  env:"OPENAI__API_KEY" sensitive:"true"`
	ReasoningEffort string          `koanf:"reasoning_effort" json:"reasoning_effort"   yaml:"reasoning_effort"   env:"OPENAI__REASONING_EFFORT" validate:"omitempty,oneof=low medium high"`
	BaseURL         string          `koanf:"base_url"         json:"base_url,omitempty" yaml:"base_url,omitempty" env:"OPENAI__BASE_URL"`
	Extra           map[string]any  `koanf:",remain"          json:"-"                  yaml:",inline"`
}

// AzureSettings configures Azure OpenAI model access. Both fields are
// required whenever the section is present.
type AzureSettings struct {
	APIKey   SensitiveString `koanf:"api_key"  json:"api_key"  yaml:"api_key"  env:"AZURE__API_KEY" sensitive:"true" validate:"required"`
	Endpoint string          `koanf:"endpoint" json:"endpoint" yaml:"endpoint" env:"AZURE__ENDPOINT"                 validate:"required"`
	Extra    map[string]any  `koanf:",remain"  json:"-"        yaml:",inline"`
}

// TemporalSettings configures Temporal workflow orchestration. Host and
// TaskQueue are required whenever the section is present.
type TemporalSettings struct {
	Host      string          `koanf:"host"       json:"host"              yaml:"host"              env:"TEMPORAL__HOST"       validate:"required"`
	Namespace string          `koanf:"namespace"  json:"namespace"         yaml:"namespace"         env:"TEMPORAL__NAMESPACE"`
	TaskQueue string          `koanf:"task_queue" json:"task_queue"        yaml:"task_queue"        env:"TEMPORAL__TASK_QUEUE" validate:"required"`
	APIKey    SensitiveString `koanf:"api_key"    json:"api_key,omitempty" yaml:"api_key,omitempty" env:"TEMPORAL__API_KEY"    sensitive:"true"`
}

// OpenTelemetrySettings configures OTEL tracing.
type OpenTelemetrySettings struct {
	Enabled           bool    `koanf:"enabled"             json:"enabled"                       yaml:"enabled"                       env:"OTEL__ENABLED"`
	ServiceName       string  `koanf:"service_name"        json:"service_name"                  yaml:"service_name"                  env:"OTEL__SERVICE_NAME"`
	ServiceInstanceID string  `koanf:"service_instance_id" json:"service_instance_id,omitempty" yaml:"service_instance_id,omitempty" env:"OTEL__SERVICE_INSTANCE_ID"`
	ServiceVersion    string  `koanf:"service_version"     json:"service_version,omitempty"     yaml:"service_version,omitempty"     env:"OTEL__SERVICE_VERSION"`
	OTLPEndpoint      string  `koanf:"otlp_endpoint"       json:"otlp_endpoint,omitempty"       yaml:"otlp_endpoint,omitempty"       env:"OTEL__OTLP_ENDPOINT"`
	ConsoleDebug      bool    `koanf:"console_debug"       json:"console_debug"                 yaml:"console_debug"                 env:"OTEL__CONSOLE_DEBUG"`
	SampleRate        float64 `koanf:"sample_rate"         json:"sample_rate"                   yaml:"sample_rate"                   env:"OTEL__SAMPLE_RATE" validate:"min=0,max=1"`
}

// UsageTelemetrySettings configures anonymized usage reporting.
type UsageTelemetrySettings struct {
	Enabled                 bool `koanf:"enabled"                   json:"enabled"                   yaml:"enabled"                   env:"USAGE_TELEMETRY__ENABLED"`
	EnableDetailedTelemetry bool `koanf:"enable_detailed_telemetry" json:"enable_detailed_telemetry" yaml:"enable_detailed_telemetry" env:"USAGE_TELEMETRY__ENABLE_DETAILED_TELEMETRY"`
}

// LogPathSettings configures dynamic log file naming.
type LogPathSettings struct {
	// PathPattern contains a {unique_id} placeholder replaced according to
	// UniqueID when the log file is opened.
	PathPattern string `koanf:"path_pattern" json:"path_pattern" yaml:"path_pattern"`

	// UniqueID selects the placeholder value: a timestamp formatted with
	// TimestampFormat, or a generated session UUID.
	UniqueID string `koanf:"unique_id" json:"unique_id" yaml:"unique_id" validate:"omitempty,oneof=timestamp session_id"`

	// TimestampFormat is a Go reference-time layout.
	TimestampFormat string `koanf:"timestamp_format" json:"timestamp_format" yaml:"timestamp_format"`
}

// LoggerSettings configures the application logger.
type LoggerSettings struct {
	Type       string   `koanf:"type"       json:"type"                 yaml:"type"                 env:"LOGGER__TYPE"       validate:"omitempty,oneof=none console file http"`
	Transports []string `koanf:"transports" json:"transports,omitempty" yaml:"transports,omitempty" env:"LOGGER__TRANSPORTS" validate:"omitempty,dive,oneof=none console file http"`
	Level      string   `koanf:"level"      json:"level"                yaml:"level"                env:"LOGGER__LEVEL"      validate:"omitempty,oneof=debug info warning error"`

	ProgressDisplay bool `koanf:"progress_display" json:"progress_display" yaml:"progress_display" env:"LOGGER__PROGRESS_DISPLAY"`

	// Path is the log file location for the file transport.
	Path         string           `koanf:"path"          json:"path"                    yaml:"path"                    env:"LOGGER__PATH"`
	PathSettings *LogPathSettings `koanf:"path_settings" json:"path_settings,omitempty" yaml:"path_settings,omitempty"`

	BatchSize     int     `koanf:"batch_size"     json:"batch_size"     yaml:"batch_size"     env:"LOGGER__BATCH_SIZE"     validate:"min=0"`
	FlushInterval float64 `koanf:"flush_interval" json:"flush_interval" yaml:"flush_interval" env:"LOGGER__FLUSH_INTERVAL" validate:"min=0"`
	MaxQueueSize  int     `koanf:"max_queue_size" json:"max_queue_size" yaml:"max_queue_size" env:"LOGGER__MAX_QUEUE_SIZE" validate:"min=0"`

	// HTTP transport settings.
	HTTPEndpoint string            `koanf:"http_endpoint" json:"http_endpoint,omitempty" yaml:"http_endpoint,omitempty" env:"LOGGER__HTTP_ENDPOINT"`
	HTTPHeaders  map[string]string `koanf:"http_headers"  json:"http_headers,omitempty"  yaml:"http_headers,omitempty"`
	HTTPTimeout  float64           `koanf:"http_timeout"  json:"http_timeout"            yaml:"http_timeout"            env:"LOGGER__HTTP_TIMEOUT" validate:"min=0"`
}

// Execution engine identifiers.
const (
	EngineAsyncio  = "asyncio"
	EngineTemporal = "temporal"
)

// Default returns Settings with all declared defaults applied.
func Default() *Settings {
	return &Settings{
		MCP:             DefaultMCPSettings(),
		ExecutionEngine: EngineAsyncio,
		OTel:            DefaultOpenTelemetrySettings(),
		Logger:          DefaultLoggerSettings(),
		UsageTelemetry:  DefaultUsageTelemetrySettings(),
	}
}

// DefaultMCPSettings returns an MCP section with no servers configured.
func DefaultMCPSettings() *MCPSettings {
	return &MCPSettings{Servers: map[string]MCPServerSettings{}}
}

// DefaultOpenTelemetrySettings returns the default OTEL section.
func DefaultOpenTelemetrySettings() *OpenTelemetrySettings {
	return &OpenTelemetrySettings{
		Enabled:     true,
		ServiceName: "mcp-agent",
		SampleRate:  1.0,
	}
}

// DefaultLoggerSettings returns the default logger section.
func DefaultLoggerSettings() *LoggerSettings {
	return &LoggerSettings{
		Type:          "console",
		Level:         "info",
		Path:          "mcp-agent.jsonl",
		BatchSize:     100,
		FlushInterval: 2.0,
		MaxQueueSize:  2048,
		HTTPTimeout:   5.0,
	}
}

// DefaultUsageTelemetrySettings returns the default usage telemetry section.
func DefaultUsageTelemetrySettings() *UsageTelemetrySettings {
	return &UsageTelemetrySettings{Enabled: true}
}

// DefaultLogPathSettings returns the default dynamic log path section.
func DefaultLogPathSettings() *LogPathSettings {
	return &LogPathSettings{
		PathPattern:     "logs/mcp-agent-{unique_id}.jsonl",
		UniqueID:        "timestamp",
		TimestampFormat: "20060102_150405",
	}
}

// Service defines the configuration loading service interface.
type Service interface {
	// Load binds the given sources plus defaults and environment variables
	// into validated Settings. Sources are applied in order after defaults;
	// environment variables are applied last.
	Load(ctx context.Context, sources ...Source) (*Settings, error)
	// Validate checks settings against schema and custom rules.
	Validate(settings *Settings) error
	// GetSource returns the source type that provided a configuration key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source as a raw settings tree.
	Load() (map[string]any, error)
	// Type returns the source type identifier.
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceYAML    SourceType = "yaml"
	SourceSecrets SourceType = "secrets"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata records which source provided each configuration key.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}
