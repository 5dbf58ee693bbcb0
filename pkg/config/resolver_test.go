package config

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(fsys afero.Fs, workDir string) *Resolver {
	return NewResolver(WithFs(fsys), WithWorkDir(workDir))
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Should resolve all defaults when no config file exists", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		r := newTestResolver(fsys, "/project")

		settings, err := r.Resolve(ctx, "")

		require.NoError(t, err)
		assert.Equal(t, EngineAsyncio, settings.ExecutionEngine)
		assert.Equal(t, "info", settings.Logger.Level)
		assert.Equal(t, "console", settings.Logger.Type)
		assert.True(t, settings.OTel.Enabled)
		assert.True(t, settings.UsageTelemetry.Enabled)
		assert.NotNil(t, settings.MCP)
		assert.Empty(t, settings.MCP.Servers)
		assert.Nil(t, settings.Temporal)
		assert.Nil(t, settings.OpenAI)
	})

	t.Run("Should resolve all defaults when an explicit path does not exist", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		r := newTestResolver(fsys, "/project")

		settings, err := r.Resolve(ctx, "/nonexistent/path.yaml")

		require.NoError(t, err)
		assert.Equal(t, EngineAsyncio, settings.ExecutionEngine)
		assert.Empty(t, settings.MCP.Servers)
	})

	t.Run("Should load a discovered config file end to end", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", `
mcp:
  servers:
    foo:
      command: npx
      args:
        - "-y"
        - "@mcp/fetch"
`)
		r := newTestResolver(fsys, "/project")

		settings, err := r.Resolve(ctx, "")

		require.NoError(t, err)
		require.Contains(t, settings.MCP.Servers, "foo")
		server := settings.MCP.Servers["foo"]
		assert.Equal(t, "npx", server.Command)
		assert.Equal(t, []string{"-y", "@mcp/fetch"}, server.Args)
		assert.Equal(t, "stdio", server.Transport)
		// Everything else keeps declared defaults.
		assert.Equal(t, EngineAsyncio, settings.ExecutionEngine)
		assert.Equal(t, "info", settings.Logger.Level)
	})

	t.Run("Should merge a discovered secrets file over the config file", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", `
openai:
  api_key: cfg-key
  base_url: https://api.openai.example
`)
		writeFile(t, fsys, "/project/mcp-agent.secrets.yaml", `
openai:
  api_key: secret-key
`)
		r := newTestResolver(fsys, "/project")

		settings, err := r.Resolve(ctx, "")

		require.NoError(t, err)
		require.NotNil(t, settings.OpenAI)
		assert.Equal(t, "secret-key", settings.OpenAI.APIKey.Value())
		// Keys the secrets tree omits keep their config values.
		assert.Equal(t, "https://api.openai.example", settings.OpenAI.BaseURL)
		assert.Equal(t, "medium", settings.OpenAI.ReasoningEffort)
	})

	t.Run("Should use an explicit config path when given", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/elsewhere/custom.yaml", "execution_engine: temporal\ntemporal:\n  host: localhost:7233\n  task_queue: agents\n")
		r := newTestResolver(fsys, "/project")

		settings, err := r.Resolve(ctx, "/elsewhere/custom.yaml")

		require.NoError(t, err)
		assert.Equal(t, EngineTemporal, settings.ExecutionEngine)
		require.NotNil(t, settings.Temporal)
		assert.Equal(t, "localhost:7233", settings.Temporal.Host)
		assert.Equal(t, "agents", settings.Temporal.TaskQueue)
		assert.Equal(t, "default", settings.Temporal.Namespace)
	})

	t.Run("Should return the cached settings on repeated calls even when files change", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", "execution_engine: asyncio\n")
		r := newTestResolver(fsys, "/project")

		first, err := r.Resolve(ctx, "")
		require.NoError(t, err)

		writeFile(t, fsys, "/project/mcp-agent.config.yaml", "execution_engine: temporal\ntemporal:\n  host: h\n  task_queue: q\n")

		second, err := r.Resolve(ctx, "")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, EngineAsyncio, second.ExecutionEngine)
	})

	t.Run("Should ignore the path argument once a result is cached", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/other/config.yaml", "execution_engine: temporal\ntemporal:\n  host: h\n  task_queue: q\n")
		r := newTestResolver(fsys, "/project")

		first, err := r.Resolve(ctx, "")
		require.NoError(t, err)

		second, err := r.Resolve(ctx, "/other/config.yaml")
		require.NoError(t, err)

		assert.Same(t, first, second)
	})

	t.Run("Should propagate malformed config YAML as an error", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", "mcp: [unclosed\n")
		r := newTestResolver(fsys, "/project")

		settings, err := r.Resolve(ctx, "")

		require.Error(t, err)
		assert.Nil(t, settings)
		assert.Contains(t, err.Error(), "failed to load config file")
	})

	t.Run("Should abort resolution when the secrets file is malformed", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", "execution_engine: asyncio\n")
		writeFile(t, fsys, "/project/mcp-agent.secrets.yaml", "openai: [unclosed\n")
		r := newTestResolver(fsys, "/project")

		settings, err := r.Resolve(ctx, "")

		require.Error(t, err)
		assert.Nil(t, settings)
		assert.Contains(t, err.Error(), "failed to load secrets file")
	})

	t.Run("Should not cache a failed resolution", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", "mcp: [unclosed\n")
		r := newTestResolver(fsys, "/project")

		_, err := r.Resolve(ctx, "")
		require.Error(t, err)

		writeFile(t, fsys, "/project/mcp-agent.config.yaml", "execution_engine: asyncio\n")

		settings, err := r.Resolve(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, EngineAsyncio, settings.ExecutionEngine)
	})

	t.Run("Should fail validation for a root URI without the file scheme", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", `
mcp:
  servers:
    fs:
      command: npx
      roots:
        - uri: /tmp/x
`)
		r := newTestResolver(fsys, "/project")

		settings, err := r.Resolve(ctx, "")

		require.Error(t, err)
		assert.Nil(t, settings)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("Should accept a root URI with the file scheme", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", `
mcp:
  servers:
    fs:
      command: npx
      roots:
        - uri: file:///tmp/x
          name: scratch
`)
		r := newTestResolver(fsys, "/project")

		settings, err := r.Resolve(ctx, "")

		require.NoError(t, err)
		require.Len(t, settings.MCP.Servers["fs"].Roots, 1)
		assert.Equal(t, "file:///tmp/x", settings.MCP.Servers["fs"].Roots[0].URI)
	})

	t.Run("Should fail validation when the temporal section omits its task queue", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", "temporal:\n  host: localhost:7233\n")
		r := newTestResolver(fsys, "/project")

		settings, err := r.Resolve(ctx, "")

		require.Error(t, err)
		assert.Nil(t, settings)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("Should construct a defaulted section for an explicitly empty mapping", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", "openai: {}\nlogger: {}\n")
		r := newTestResolver(fsys, "/project")

		settings, err := r.Resolve(ctx, "")

		require.NoError(t, err)
		require.NotNil(t, settings.OpenAI)
		assert.Equal(t, "medium", settings.OpenAI.ReasoningEffort)
		assert.Empty(t, settings.OpenAI.APIKey.Value())
		// Empty sections never erase defaults of always-present sections.
		assert.Equal(t, "info", settings.Logger.Level)
	})

	t.Run("Should preserve unknown keys in the settings tree", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/project/mcp-agent.config.yaml", `
custom_section:
  flag: true
openai:
  api_key: k
  vendor_option: 7
`)
		r := newTestResolver(fsys, "/project")

		settings, err := r.Resolve(ctx, "")

		require.NoError(t, err)
		require.Contains(t, settings.Extra, "custom_section")
		assert.Contains(t, settings.OpenAI.Extra, "vendor_option")
	})
}

func TestResolver_Context(t *testing.T) {
	t.Run("Should retrieve the resolver attached to the context", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		r := newTestResolver(fsys, "/project")
		ctx := ContextWithResolver(context.Background(), r)

		assert.Same(t, r, ResolverFromContext(ctx))

		settings, err := FromContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, EngineAsyncio, settings.ExecutionEngine)
	})
}
