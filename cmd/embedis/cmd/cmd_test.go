package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/embedis/pkg/api"
	"github.com/ssargent/embedis/pkg/config"
	"github.com/ssargent/embedis/pkg/di"
)

// writeTestConfig saves a small file-backed configuration and returns its path
func writeTestConfig(t *testing.T, edit func(*config.Config)) string {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Image = filepath.Join(dir, "settings.img")
	cfg.Region.Size = 256
	cfg.Archive.Path = filepath.Join(dir, "snapshots")
	cfg.Security.APIKey = "test-key"
	cfg.Logging.Level = "error"
	cfg.Defaults = map[string]string{"wifiName0": "home"}
	if edit != nil {
		edit(cfg)
	}

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, path))
	return path
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func executeWith(t *testing.T, c *di.Container, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	SetContainer(c)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err != nil {
		c.Close()
	}
	return buf.String(), err
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWith(t, di.NewContainer(), args...)
}

func TestSetGetCommands(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)

	out, err := execute(t, "--config", cfgPath, "set", "hostname", "kitchen")
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	out, err = execute(t, "--config", cfgPath, "get", "hostname", "wifiName0", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, `> hostname => "kitchen"`)
	assert.Contains(t, out, "> wifiName0 => home (default)")
	assert.Contains(t, out, "> missing =>\n")

	out, err = execute(t, "--config", cfgPath, "keys")
	require.NoError(t, err)
	assert.Contains(t, out, `> hostname => "kitchen"`)
	assert.Contains(t, out, "Number of keys: 1")
	assert.Contains(t, out, "Available:")
}

func TestSetCommand_NoSpace(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)

	_, err := execute(t, "--config", cfgPath, "set", "blob", strings.Repeat("x", 512))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not set the key")
}

func TestDeleteCommand(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)

	for _, key := range []string{"relayBoot0", "relayBoot1", "hostname"} {
		_, err := execute(t, "--config", cfgPath, "set", key, "1")
		require.NoError(t, err)
	}

	out, err := execute(t, "--config", cfgPath, "del", "hostname", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 key(s)")

	out, err = execute(t, "--config", cfgPath, "del", "--prefix", "relay")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 key(s)")

	_, err = execute(t, "--config", cfgPath, "del", "hostname")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no keys were removed")
}

func TestConfigAndRestoreCommands(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)
	backup := filepath.Join(t.TempDir(), "backup.json")

	_, err := execute(t, "--config", cfgPath, "set", "hostname", "kitchen")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfgPath, "config")
	require.NoError(t, err)
	assert.Contains(t, out, `"hostname": "kitchen"`)

	_, err = execute(t, "--config", cfgPath, "config", "--output", backup)
	require.NoError(t, err)
	assert.FileExists(t, backup)

	_, err = execute(t, "--config", cfgPath, "set", "hostname", "garage")
	require.NoError(t, err)
	_, err = execute(t, "--config", cfgPath, "set", "extra", "1")
	require.NoError(t, err)

	out, err = execute(t, "--config", cfgPath, "restore", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Settings restored successfully")

	out, err = execute(t, "--config", cfgPath, "get", "hostname", "extra")
	require.NoError(t, err)
	assert.Contains(t, out, `> hostname => "kitchen"`)
	assert.Contains(t, out, "> extra =>\n")
}

func TestRestoreCommand_WrongApp(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)
	backup := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(backup, []byte(`{"app":"OTHER","hostname":"x"}`), 0600))

	_, err := execute(t, "--config", cfgPath, "restore", backup)
	assert.Error(t, err)

	_, err = execute(t, "--config", cfgPath, "restore", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestResetAndSaveCommands(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)

	_, err := execute(t, "--config", cfgPath, "set", "hostname", "kitchen")
	require.NoError(t, err)

	_, err = execute(t, "--config", cfgPath, "save")
	require.NoError(t, err)

	_, err = execute(t, "--config", cfgPath, "reset")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfgPath, "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "Number of keys: 0")
}

func TestSnapshotCommands(t *testing.T) {
	for _, backend := range []string{"pebble", "bolt"} {
		t.Run(backend, func(t *testing.T) {
			cfgPath := writeTestConfig(t, func(cfg *config.Config) {
				cfg.Archive.Backend = backend
			})

			_, err := execute(t, "--config", cfgPath, "set", "hostname", "kitchen")
			require.NoError(t, err)

			out, err := execute(t, "--config", cfgPath, "snapshot", "create", "--label", "before")
			require.NoError(t, err)
			fields := strings.Fields(out)
			require.GreaterOrEqual(t, len(fields), 2)
			id := fields[1]

			out, err = execute(t, "--config", cfgPath, "snapshot", "list")
			require.NoError(t, err)
			assert.Contains(t, out, id)
			assert.Contains(t, out, "before")

			_, err = execute(t, "--config", cfgPath, "set", "hostname", "garage")
			require.NoError(t, err)

			_, err = execute(t, "--config", cfgPath, "snapshot", "restore", id)
			require.NoError(t, err)

			out, err = execute(t, "--config", cfgPath, "get", "hostname")
			require.NoError(t, err)
			assert.Contains(t, out, `> hostname => "kitchen"`)

			_, err = execute(t, "--config", cfgPath, "snapshot", "delete", id)
			require.NoError(t, err)

			out, err = execute(t, "--config", cfgPath, "snapshot", "list")
			require.NoError(t, err)
			assert.Contains(t, out, "No snapshots")

			_, err = execute(t, "--config", cfgPath, "snapshot", "restore", id)
			assert.Error(t, err)
		})
	}
}

func TestImageFlagOverridesConfig(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)
	image := filepath.Join(t.TempDir(), "other.img")

	_, err := execute(t, "--config", cfgPath, "--image", image, "set", "hostname", "kitchen")
	require.NoError(t, err)
	assert.FileExists(t, image)

	out, err := execute(t, "--config", cfgPath, "get", "hostname")
	require.NoError(t, err)
	assert.Contains(t, out, "> hostname =>\n")
}

func TestInitCommand(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "embedis.yaml")
	dataDir := filepath.Join(tmpDir, "data")

	t.Run("Successful initialization", func(t *testing.T) {
		out, err := execute(t, "--config", cfgPath, "init", "--data-dir", dataDir)
		require.NoError(t, err)
		assert.Contains(t, out, "API key:")
		assert.FileExists(t, cfgPath)

		cfg, err := config.LoadConfig(cfgPath)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dataDir, "settings.img"), cfg.Image)
		assert.Len(t, cfg.Security.APIKey, 64)
	})

	t.Run("Existing configuration is kept", func(t *testing.T) {
		before, err := config.LoadConfig(cfgPath)
		require.NoError(t, err)

		out, err := execute(t, "--config", cfgPath, "init", "--data-dir", dataDir)
		require.NoError(t, err)
		assert.Contains(t, out, "already exists")

		after, err := config.LoadConfig(cfgPath)
		require.NoError(t, err)
		assert.Equal(t, before.Security.APIKey, after.Security.APIKey)
	})

	t.Run("Force reinitialization", func(t *testing.T) {
		before, err := config.LoadConfig(cfgPath)
		require.NoError(t, err)

		_, err = execute(t, "--config", cfgPath, "init", "--data-dir", dataDir, "--force")
		require.NoError(t, err)

		after, err := config.LoadConfig(cfgPath)
		require.NoError(t, err)
		assert.NotEqual(t, before.Security.APIKey, after.Security.APIKey)
	})

	t.Run("Image is not opened", func(t *testing.T) {
		assert.NoFileExists(t, filepath.Join(dataDir, "settings.img"))
	})
}

// recordingFactory captures the server configuration instead of listening
type recordingFactory struct {
	config api.ServerConfig
	deps   api.Dependencies
	calls  int
}

func (f *recordingFactory) CreateServerStarter() api.ServerStarter {
	return f
}

func (f *recordingFactory) StartServer(ctx context.Context, deps api.Dependencies, config api.ServerConfig) error {
	f.calls++
	f.deps = deps
	f.config = config
	return nil
}

func TestServeCommand(t *testing.T) {
	t.Run("uses the configuration", func(t *testing.T) {
		cfgPath := writeTestConfig(t, nil)
		factory := &recordingFactory{}
		c := di.NewContainer()
		c.SetServerFactory(factory)

		_, err := executeWith(t, c, "--config", cfgPath, "serve")
		require.NoError(t, err)
		assert.Equal(t, 1, factory.calls)
		assert.Equal(t, 8080, factory.config.Port)
		assert.Equal(t, "127.0.0.1", factory.config.Bind)
		assert.Equal(t, "test-key", factory.config.APIKey)
		assert.NotNil(t, factory.deps.Settings)
		assert.NotNil(t, factory.deps.Snapshots)
	})

	t.Run("flags override the configuration", func(t *testing.T) {
		cfgPath := writeTestConfig(t, nil)
		factory := &recordingFactory{}
		c := di.NewContainer()
		c.SetServerFactory(factory)

		_, err := executeWith(t, c, "--config", cfgPath, "serve", "--port", "9090", "--bind", "0.0.0.0", "--api-key", "flag-key")
		require.NoError(t, err)
		assert.Equal(t, 9090, factory.config.Port)
		assert.Equal(t, "0.0.0.0", factory.config.Bind)
		assert.Equal(t, "flag-key", factory.config.APIKey)
	})

	t.Run("requires an API key", func(t *testing.T) {
		cfgPath := writeTestConfig(t, func(cfg *config.Config) {
			cfg.Security.APIKey = "auto"
		})
		factory := &recordingFactory{}
		c := di.NewContainer()
		c.SetServerFactory(factory)

		_, err := executeWith(t, c, "--config", cfgPath, "serve")
		require.Error(t, err)
		assert.Equal(t, 0, factory.calls)
	})
}
