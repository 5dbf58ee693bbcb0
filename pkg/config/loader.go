package config

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

// loader implements the Service interface for configuration loading.
type loader struct {
	koanf      *koanf.Koanf
	validator  *validator.Validate
	metadata   Metadata
	metadataMu sync.RWMutex
}

// sensitiveStringDecodeHook converts plain strings to SensitiveString
// during unmarshal.
func sensitiveStringDecodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(SensitiveString("")) {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return SensitiveString(v), nil
	case []byte:
		return SensitiveString(v), nil
	default:
		return data, nil
	}
}

// NewService creates a new configuration service with validation support.
func NewService() Service {
	v := validator.New()
	// Registration only fails for a blank tag name.
	_ = RegisterCustomValidators(v)
	return &loader{
		koanf:     koanf.New("."),
		validator: v,
		metadata: Metadata{
			Sources: make(map[string]SourceType),
		},
	}
}

// Load binds sources into validated Settings. Declared defaults are loaded
// first, then each source in order, then environment variables, so later
// layers win for the keys they provide.
func (l *loader) Load(_ context.Context, sources ...Source) (*Settings, error) {
	l.reset()

	if err := l.loadDefaults(); err != nil {
		return nil, err
	}

	if err := l.loadSources(sources); err != nil {
		return nil, err
	}

	if err := l.loadEnvironment(); err != nil {
		return nil, err
	}

	return l.unmarshalAndValidate()
}

// reset clears the configuration and metadata.
func (l *loader) reset() {
	l.koanf.Delete("")

	l.metadataMu.Lock()
	l.metadata.Sources = make(map[string]SourceType)
	l.metadata.LoadedAt = time.Now()
	l.metadataMu.Unlock()
}

// loadDefaults loads the declared default values.
func (l *loader) loadDefaults() error {
	source := NewDefaultProvider()
	defaults, err := source.Load()
	if err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := l.koanf.Load(rawMap(defaults), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	for _, key := range l.koanf.Keys() {
		l.trackSource(key, source.Type())
	}
	return nil
}

// loadSources loads configuration from the given sources in order.
func (l *loader) loadSources(sources []Source) error {
	for _, source := range sources {
		if source == nil || source.Type() == SourceEnv {
			continue
		}
		if err := l.loadSource(source); err != nil {
			return err
		}
	}
	return nil
}

// loadSource applies a single source on top of the current state. Keys are
// set individually so values absent from the source keep their defaults.
func (l *loader) loadSource(source Source) error {
	data, err := source.Load()
	if err != nil {
		return fmt.Errorf("failed to load from source %s: %w", source.Type(), err)
	}
	if len(data) == 0 {
		return nil
	}

	keysBefore := make(map[string]any)
	for _, key := range l.koanf.Keys() {
		keysBefore[key] = l.koanf.Get(key)
	}

	flattened := flattenTree("", data)
	for key, value := range flattened {
		// An empty section materializes defaults for sections that are
		// otherwise absent, but never erases values already layered in.
		if nested, ok := value.(map[string]any); ok && len(nested) == 0 && l.koanf.Exists(key) {
			continue
		}
		if err := l.koanf.Set(key, value); err != nil {
			return fmt.Errorf("failed to set key %s from source %s: %w", key, source.Type(), err)
		}
	}

	for _, key := range l.koanf.Keys() {
		valBefore, existed := keysBefore[key]
		valAfter := l.koanf.Get(key)
		if !existed || !reflect.DeepEqual(valBefore, valAfter) {
			l.trackSource(key, source.Type())
		}
	}

	return nil
}

// flattenTree flattens a nested settings tree into dot-notation keys.
// Lists and scalars are leaves and are set wholesale. A mapping whose keys
// contain the delimiter (a server named "my.server") is also a leaf, so
// such names are never split into spurious nesting.
func flattenTree(prefix string, m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok && len(nested) > 0 && !hasDelimiterKey(nested) {
			for fk, fv := range flattenTree(key, nested) {
				result[fk] = fv
			}
			continue
		}
		result[key] = v
	}
	return result
}

// hasDelimiterKey reports whether any direct key of the mapping contains
// the key-path delimiter.
func hasDelimiterKey(m map[string]any) bool {
	for k := range m {
		if strings.Contains(k, ".") {
			return true
		}
	}
	return false
}

// transformEnvKey converts a nested environment variable name to a config
// path, splitting on the "__" delimiter: MCP__SERVERS__FOO__COMMAND becomes
// mcp.servers.foo.command. Names without the delimiter are not bound.
func transformEnvKey(s string) string {
	if !strings.Contains(s, "__") {
		return ""
	}
	parts := strings.Split(strings.ToLower(s), "__")
	cleaned := parts[:0]
	for _, p := range parts {
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, ".")
}

// loadEnvironment loads configuration from environment variables. A .env
// file in the working directory is read first without overriding variables
// already set in the process environment.
func (l *loader) loadEnvironment() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	keysBefore := make(map[string]any)
	for _, key := range l.koanf.Keys() {
		keysBefore[key] = l.koanf.Get(key)
	}

	envToPath := GenerateEnvToConfigMap()

	if err := l.koanf.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key string, value string) (string, any) {
			// Explicitly mapped variables bind to their declared path;
			// everything else binds only through the __ delimiter.
			if configPath, exists := envToPath[key]; exists {
				return configPath, value
			}
			return transformEnvKey(key), value
		},
	}), nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	for _, key := range l.koanf.Keys() {
		valBefore, existed := keysBefore[key]
		valAfter := l.koanf.Get(key)
		if !existed || !reflect.DeepEqual(valBefore, valAfter) {
			l.trackSource(key, SourceEnv)
		}
	}

	return nil
}

// unmarshalAndValidate unmarshals the merged state and validates it.
func (l *loader) unmarshalAndValidate() (*Settings, error) {
	var settings Settings

	if err := l.koanf.UnmarshalWithConf("", &settings, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &settings,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				sensitiveStringDecodeHook,
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	applySectionDefaults(&settings)

	if err := l.Validate(&settings); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &settings, nil
}

// applySectionDefaults fills per-section defaults the raw default tree
// cannot express: fields of optional sections that only materialize when
// the section appears in configuration.
func applySectionDefaults(s *Settings) {
	if s.MCP == nil {
		s.MCP = DefaultMCPSettings()
	}
	if s.MCP.Servers == nil {
		s.MCP.Servers = map[string]MCPServerSettings{}
	}
	for name, server := range s.MCP.Servers {
		if server.Transport == "" {
			server.Transport = "stdio"
			s.MCP.Servers[name] = server
		}
	}
	if s.Temporal != nil && s.Temporal.Namespace == "" {
		s.Temporal.Namespace = "default"
	}
	if s.OpenAI != nil && s.OpenAI.ReasoningEffort == "" {
		s.OpenAI.ReasoningEffort = "medium"
	}
	if s.Logger != nil && s.Logger.PathSettings != nil {
		defaults := DefaultLogPathSettings()
		ps := s.Logger.PathSettings
		if ps.PathPattern == "" {
			ps.PathPattern = defaults.PathPattern
		}
		if ps.UniqueID == "" {
			ps.UniqueID = defaults.UniqueID
		}
		if ps.TimestampFormat == "" {
			ps.TimestampFormat = defaults.TimestampFormat
		}
	}
}

// Validate checks settings against schema tags and custom rules.
func (l *loader) Validate(settings *Settings) error {
	if settings == nil {
		return fmt.Errorf("settings cannot be nil")
	}
	if err := l.validator.Struct(settings); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// GetSource returns the source type for a specific configuration key.
func (l *loader) GetSource(key string) SourceType {
	l.metadataMu.RLock()
	defer l.metadataMu.RUnlock()

	if source, ok := l.metadata.Sources[key]; ok {
		return source
	}
	return SourceDefault
}

// trackSource records which source provided a specific configuration key.
func (l *loader) trackSource(key string, source SourceType) {
	l.metadataMu.Lock()
	defer l.metadataMu.Unlock()
	l.metadata.Sources[key] = source
}

// rawMap is a koanf.Provider adapter for map[string]any data.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not implemented")
}
