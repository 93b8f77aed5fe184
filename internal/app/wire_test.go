package app_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hwgpg/internal/app"
	"hwgpg/internal/config"
	"hwgpg/internal/log"
)

func TestDefaults_LoadIntoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := config.Load[app.Config](nil, app.Defaults(), "")
	require.NoError(t, err)
	require.Equal(t, app.DefaultHome(), cfg.Home)
	require.Equal(t, "nist256p1", cfg.Curve)
	require.Equal(t, "gpg2", cfg.GPG.Binary)
	require.Equal(t, "2.1.15", cfg.GPG.MinVersion)
	require.Equal(t, "trezor-gpg", cfg.Agent.ProcessName)
	require.True(t, cfg.Agent.Probe)
	require.Equal(t, "5s", cfg.Agent.ReadyTimeout.String())
	require.Equal(t, "3s", cfg.Agent.StopGrace.String())
	require.Equal(t, "warning", cfg.Log.Level)
}

func TestNewWire_BuildsServices(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := config.Load[app.Config](nil, app.Defaults(), "")
	require.NoError(t, err)
	cfg.Home = filepath.Join(t.TempDir(), "trezor")

	w, err := app.NewWire(cfg, log.Discard(), app.Options{Output: io.Discard})
	require.NoError(t, err)
	require.NotNil(t, w.Identity)
	require.NotNil(t, w.Sessions)
	require.NotNil(t, w.Keyring)
	require.Equal(t, cfg.Home, w.Store.Dir())
}
