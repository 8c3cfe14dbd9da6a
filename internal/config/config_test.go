package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	t.Setenv("JTECH_HOST", "192.168.1.50")

	cfg, err := Load("", logger)
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.50", cfg.Host)
	assert.Equal(t, "Admin", cfg.Username)
	assert.Equal(t, 10*time.Second, cfg.ScanInterval.Std())
	assert.Equal(t, time.Second, cfg.RefreshDebounce.Std())
	assert.Equal(t, ":8099", cfg.APIListen)
	assert.True(t, cfg.Options.HDMIStreamToggle)
	assert.True(t, cfg.Options.CATStreamToggle)
	assert.False(t, cfg.Options.CECSourceToggle)
	assert.Equal(t, "none", cfg.Options.CECVolumeControl)
}

func TestLoad_File(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := writeConfig(t, `
host: matrix.local
username: Installer
password: secret
scan_interval: 30s
refresh_debounce: 500ms
api_listen: ":9000"
options:
  hdmi_stream_toggle: true
  cat_stream_toggle: false
  cec_source_toggle: true
  cec_output_toggle: true
  cec_delay_power: 3s
  cec_delay_source: 1s
  cec_volume_control: source
`)

	cfg, err := Load(path, logger)
	require.NoError(t, err)

	assert.Equal(t, "matrix.local", cfg.Host)
	assert.Equal(t, "Installer", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 30*time.Second, cfg.ScanInterval.Std())
	assert.Equal(t, 500*time.Millisecond, cfg.RefreshDebounce.Std())
	assert.Equal(t, ":9000", cfg.APIListen)
	assert.False(t, cfg.Options.CATStreamToggle)
	assert.True(t, cfg.Options.CECOutputToggle)
	assert.Equal(t, 3*time.Second, cfg.Options.CECDelayPower.Std())
	assert.Equal(t, "source", cfg.Options.CECVolumeControl)
}

func TestLoad_EnvOverrides(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := writeConfig(t, "host: from-file\nusername: FileUser\n")

	t.Setenv("JTECH_HOST", "from-env")
	t.Setenv("JTECH_USERNAME", "EnvUser")
	t.Setenv("JTECH_PASSWORD", "envpass")
	t.Setenv("JTECH_API_LISTEN", ":7000")

	cfg, err := Load(path, logger)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Host)
	assert.Equal(t, "EnvUser", cfg.Username)
	assert.Equal(t, "envpass", cfg.Password)
	assert.Equal(t, ":7000", cfg.APIListen)
}

func TestLoad_MissingHost(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	t.Setenv("JTECH_HOST", "")

	_, err := Load("", logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host")
}

func TestLoad_InvalidVolumeControl(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := writeConfig(t, `
host: matrix.local
options:
  cec_volume_control: loud
`)

	_, err := Load(path, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cec_volume_control")
}

func TestLoad_InvalidInterval(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := writeConfig(t, "host: matrix.local\nscan_interval: -5s\n")

	_, err := Load(path, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan_interval")
}

func TestLoad_BadDuration(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := writeConfig(t, "host: matrix.local\nscan_interval: soon\n")

	_, err := Load(path, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoad_MissingFile(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), logger)
	require.Error(t, err)
}
