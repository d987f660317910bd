package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/jsf2segy/internal/convert"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jsf2segy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, convert.DefaultText(), cfg.TextHeader)
	require.Equal(t, ".sgy", cfg.Output.Extension)
	require.Equal(t, 25, cfg.Logs.MaxSizeMB)
	require.Equal(t, 7, cfg.Logs.MaxAgeDays)
	require.Equal(t, 5, cfg.Logs.MaxBackups)
	require.Equal(t, "", cfg.Logs.LogPath())
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
textHeader:
  client: NOAA
  company: PMEL
logs:
  directory: logs
  maxBackups: 2
  compress: true
output:
  extension: segy
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "NOAA", cfg.TextHeader.Client)
	require.Equal(t, "PMEL", cfg.TextHeader.Company)
	require.Equal(t, "Edgetech", cfg.TextHeader.Manufacturer)
	require.Equal(t, "JStar", cfg.TextHeader.Model)
	require.Equal(t, ".segy", cfg.Output.Extension)
	require.Equal(t, 2, cfg.Logs.MaxBackups)
	require.Equal(t, 25, cfg.Logs.MaxSizeMB)
	require.True(t, cfg.Logs.Compress)
	require.Equal(t, filepath.Join(filepath.Dir(path), "logs", "jsf2segy.log"), cfg.Logs.LogPath())
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, "textHeadr:\n  client: x\n"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "run.log")
	w, err := OpenLog(path, Default().Logs)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))
}
