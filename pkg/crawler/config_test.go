package crawler

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromReader(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		yaml := `
command: conda
args: ["run", "-n", "buffotte", "python"]
script: crawler/single_item_updater.py
work_dir: /srv/buffotte
timeout: 45s
settle_delay: 3s
poll_interval: 500ms
max_poll_attempts: 5
env:
  PYTHONIOENCODING: utf-8
`
		cfg, err := LoadConfigFromReader(strings.NewReader(yaml))
		require.NoError(t, err)
		require.Equal(t, "conda", cfg.Command)
		require.Equal(t, []string{"run", "-n", "buffotte", "python"}, cfg.Args)
		require.Equal(t, "/srv/buffotte", cfg.WorkDir)
		require.Equal(t, 45*time.Second, cfg.Timeout)
		require.Equal(t, 3*time.Second, cfg.SettleDelay)
		require.Equal(t, 500*time.Millisecond, cfg.PollInterval)
		require.Equal(t, 5, cfg.MaxPollAttempts)
		require.Equal(t, "utf-8", cfg.Env["PYTHONIOENCODING"])
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfigFromReader(strings.NewReader("{}"))
		require.NoError(t, err)
		require.Equal(t, defaultCommand, cfg.Command)
		require.Equal(t, defaultScript, cfg.Script)
		require.Equal(t, defaultTimeout, cfg.Timeout)
		require.Equal(t, defaultSettleDelay, cfg.SettleDelay)
		require.Equal(t, defaultPollInterval, cfg.PollInterval)
		require.Equal(t, defaultMaxPollAttempts, cfg.MaxPollAttempts)
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := LoadConfigFromReader(strings.NewReader("timeout: soon"))
		require.Error(t, err)
	})

	t.Run("negative attempts", func(t *testing.T) {
		_, err := LoadConfigFromReader(strings.NewReader("max_poll_attempts: -1"))
		require.Error(t, err)
	})
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv(envCommand, "/usr/bin/python3")
	t.Setenv(envScript, "/opt/updater.py")
	t.Setenv(envTimeout, "1500")

	cfg, err := LoadConfigFromReader(strings.NewReader("command: python\nscript: other.py"))
	require.NoError(t, err)
	require.Equal(t, "/usr/bin/python3", cfg.Command)
	require.Equal(t, "/opt/updater.py", cfg.Script)
	require.Equal(t, 1500*time.Millisecond, cfg.Timeout)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, defaultCommand, cfg.Command)
	require.Equal(t, defaultMaxPollAttempts, cfg.MaxPollAttempts)
}
