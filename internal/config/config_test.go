package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1.0, cfg.Speed)
	assert.Equal(t, "gatherer", cfg.Bot)
	assert.Equal(t, 100, cfg.TickLogEvery)
	assert.False(t, cfg.TickLog)
	assert.Equal(t, "json", cfg.Observer.Encoding)
	assert.Equal(t, 2, cfg.Observer.EveryTicks)
	assert.False(t, cfg.Observer.AllowRemote)
}

func TestLoad_WithYAMLFile(t *testing.T) {
	dir := t.TempDir()
	body := `
addr: 0.0.0.0:9000
logLevel: debug
speed: 4
observer:
  encoding: msgpack
  everyTicks: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robonav.yaml"), []byte(body), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4.0, cfg.Speed)
	assert.Equal(t, "msgpack", cfg.Observer.Encoding)
	assert.Equal(t, 5, cfg.Observer.EveryTicks)
	assert.Equal(t, "./data", cfg.DataDir, "unset keys keep defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ROBONAV_ADDR", "127.0.0.1:7000")
	t.Setenv("ROBONAV_OBSERVER_ENCODING", "msgpack")
	t.Setenv("ROBONAV_TICKLOG", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, "msgpack", cfg.Observer.Encoding)
	assert.True(t, cfg.TickLog)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robonav.yaml"), []byte("observer:\n  encoding: xml\n"), 0o644))
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "observer.encoding")

	bad := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bad, "robonav.yaml"), []byte("addr: [unclosed\n"), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}
