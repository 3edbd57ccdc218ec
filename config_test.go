package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := loadConfig("", "")

	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), config)
	assert.Equal(t, 150, config.SettleDelay)
	assert.Equal(t, 2000, config.NavigationTimeout)
}

func TestLoadConfig_TOMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nexterror.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"
settle_delay = 80
snapshots = ["lint.toml", "/abs/ci.json"]
`), 0o644))

	config, err := loadConfig(path, `{"settle_delay": 0, "smooth_scroll": true}`)

	require.NoError(t, err)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, 0, config.SettleDelay, "env overrides the file")
	assert.True(t, config.SmoothScroll)
	assert.Equal(t, 2000, config.NavigationTimeout, "unset keys keep defaults")
	assert.Equal(t, []string{filepath.Join(dir, "lint.toml"), "/abs/ci.json"}, config.Snapshots)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), "")
	assert.Error(t, err)

	_, err = loadConfig("", `{"settle_delay": "soon"}`)
	assert.ErrorContains(t, err, configEnv)

	_, err = loadConfig("", `{"settle_delay": -5}`)
	assert.ErrorContains(t, err, "settle_delay")
}
