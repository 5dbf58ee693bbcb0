package config

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// treeProvider implements Source for an already-parsed settings tree, such
// as the result of deep-merging a config file with a secrets file.
type treeProvider struct {
	tree       map[string]any
	sourceType SourceType
}

// NewTreeProvider creates a Source serving the given raw settings tree.
func NewTreeProvider(tree map[string]any, sourceType SourceType) Source {
	return &treeProvider{tree: tree, sourceType: sourceType}
}

// Load returns the wrapped tree with nil values filtered out.
func (t *treeProvider) Load() (map[string]any, error) {
	if t.tree == nil {
		return make(map[string]any), nil
	}
	return filterNilValues(t.tree), nil
}

// Type returns the source type identifier.
func (t *treeProvider) Type() SourceType {
	return t.sourceType
}

// yamlProvider implements Source for YAML files.
type yamlProvider struct {
	fs         afero.Fs
	path       string
	sourceType SourceType
}

// NewYAMLProvider creates a Source reading the given YAML file from the OS
// filesystem. A missing file loads as an empty tree; malformed YAML is an
// error.
func NewYAMLProvider(path string) Source {
	return NewYAMLProviderAt(afero.NewOsFs(), path, SourceYAML)
}

// NewYAMLProviderAt creates a Source reading the given YAML file from the
// given filesystem under the given source type. The resolver uses this for
// both the config file and the secrets file.
func NewYAMLProviderAt(fsys afero.Fs, path string, sourceType SourceType) Source {
	return &yamlProvider{fs: fsys, path: path, sourceType: sourceType}
}

// Load reads and parses the YAML file as a raw settings tree.
func (y *yamlProvider) Load() (map[string]any, error) {
	tree, err := readYAMLTree(y.fs, y.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, err
	}
	return filterNilValues(tree), nil
}

// Type returns the source type identifier.
func (y *yamlProvider) Type() SourceType {
	return y.sourceType
}

// readYAMLTree parses a YAML file into a raw settings tree. An empty file
// yields an empty tree; parse failures propagate to the caller.
func readYAMLTree(fsys afero.Fs, path string) (map[string]any, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", path, err)
	}
	if tree == nil {
		tree = make(map[string]any)
	}
	return tree, nil
}

// filterNilValues recursively removes nil values from a tree. A YAML null
// never overrides an existing default. Empty mappings are kept: an
// explicitly empty section (openai: {}) materializes the section with its
// defaults rather than disappearing.
func filterNilValues(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			result[k] = filterNilValues(nested)
			continue
		}
		result[k] = v
	}
	return result
}

// defaultProvider implements Source for declared default values.
type defaultProvider struct {
	defaults map[string]any
}

// NewDefaultProvider creates a Source serving declared defaults.
func NewDefaultProvider() Source {
	return &defaultProvider{defaults: createDefaultMap()}
}

// Load returns the default settings tree.
func (d *defaultProvider) Load() (map[string]any, error) {
	return d.defaults, nil
}

// Type returns the source type identifier.
func (d *defaultProvider) Type() SourceType {
	return SourceDefault
}

// createDefaultMap creates the raw tree form of Default(). Optional provider
// sections are absent on purpose; they only materialize when configured.
func createDefaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"execution_engine": d.ExecutionEngine,
		"mcp": map[string]any{
			"servers": map[string]any{},
		},
		"otel": map[string]any{
			"enabled":       d.OTel.Enabled,
			"service_name":  d.OTel.ServiceName,
			"console_debug": d.OTel.ConsoleDebug,
			"sample_rate":   d.OTel.SampleRate,
		},
		"logger": map[string]any{
			"type":             d.Logger.Type,
			"level":            d.Logger.Level,
			"progress_display": d.Logger.ProgressDisplay,
			"path":             d.Logger.Path,
			"batch_size":       d.Logger.BatchSize,
			"flush_interval":   d.Logger.FlushInterval,
			"max_queue_size":   d.Logger.MaxQueueSize,
			"http_timeout":     d.Logger.HTTPTimeout,
		},
		"usage_telemetry": map[string]any{
			"enabled":                   d.UsageTelemetry.Enabled,
			"enable_detailed_telemetry": d.UsageTelemetry.EnableDetailedTelemetry,
		},
	}
}
