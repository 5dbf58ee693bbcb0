package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLProvider(t *testing.T) {
	t.Run("Should load a YAML file as a raw settings tree", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", "execution_engine: temporal\nopenai:\n  base_url: https://api.openai.example\n")

		source := NewYAMLProviderAt(fsys, "/project/mcp-agent.config.yaml", SourceYAML)
		tree, err := source.Load()

		require.NoError(t, err)
		assert.Equal(t, "temporal", tree["execution_engine"])
		assert.Equal(t, SourceYAML, source.Type())
	})

	t.Run("Should load a missing file as an empty tree", func(t *testing.T) {
		fsys := afero.NewMemMapFs()

		tree, err := NewYAMLProviderAt(fsys, "/nowhere.yaml", SourceYAML).Load()

		require.NoError(t, err)
		assert.Empty(t, tree)
	})

	t.Run("Should propagate malformed YAML as an error", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/broken.yaml", "mcp: [unclosed\n")

		_, err := NewYAMLProviderAt(fsys, "/broken.yaml", SourceYAML).Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse YAML file")
	})

	t.Run("Should carry the secrets source type", func(t *testing.T) {
		fsys := afero.NewMemMapFs()

		source := NewYAMLProviderAt(fsys, "/mcp-agent.secrets.yaml", SourceSecrets)

		assert.Equal(t, SourceSecrets, source.Type())
	})

	t.Run("Should drop null values but keep empty sections", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/cfg.yaml", "openai: {}\nlogger:\n  level: null\n")

		tree, err := NewYAMLProviderAt(fsys, "/cfg.yaml", SourceYAML).Load()

		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, tree["openai"])
		assert.Equal(t, map[string]any{}, tree["logger"])
	})

	t.Run("Should read from the OS filesystem by default", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte("execution_engine: asyncio\n"), 0o644))

		tree, err := NewYAMLProvider(path).Load()

		require.NoError(t, err)
		assert.Equal(t, "asyncio", tree["execution_engine"])
	})
}

func TestDefaultProvider(t *testing.T) {
	t.Run("Should serve the declared default tree", func(t *testing.T) {
		source := NewDefaultProvider()

		tree, err := source.Load()

		require.NoError(t, err)
		assert.Equal(t, SourceDefault, source.Type())
		assert.Equal(t, EngineAsyncio, tree["execution_engine"])
		logger, ok := tree["logger"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "info", logger["level"])
	})
}

func TestTreeProvider(t *testing.T) {
	t.Run("Should load a nil tree as empty", func(t *testing.T) {
		tree, err := NewTreeProvider(nil, SourceYAML).Load()

		require.NoError(t, err)
		assert.Empty(t, tree)
	})
}
