package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSettings(t *testing.T) {
	t.Run("Should resolve once and serve the cached settings afterwards", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", "logger:\n  level: debug\n")
		resetForTest(WithFs(fsys), WithWorkDir("/project"))
		t.Cleanup(func() { resetForTest() })

		first, err := GetSettings("")
		require.NoError(t, err)
		assert.Equal(t, "debug", first.Logger.Level)

		writeFile(t, fsys, "/project/mcp-agent.config.yaml", "logger:\n  level: error\n")

		second, err := GetSettings("")
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("Should resolve defaults for a missing explicit path", func(t *testing.T) {
		resetForTest(WithFs(afero.NewMemMapFs()), WithWorkDir("/"))
		t.Cleanup(func() { resetForTest() })

		settings, err := GetSettings("/nonexistent/path.yaml")

		require.NoError(t, err)
		assert.Equal(t, EngineAsyncio, settings.ExecutionEngine)
	})
}
