package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name  string `json:"name"`
	Port  int    `json:"port"`
	Debug bool   `json:"debug"`
}

func write(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cricstats.json5")

	_, err := ReadConfig[testConfig](path)
	require.ErrorIs(t, err, os.ErrNotExist)

	write(t, path, `{
		// comments and trailing commas are allowed
		name: "default",
		port: 8080,
	}`)
	cfg, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "default", Port: 8080}, cfg)

	write(t, filepath.Join(dir, "cricstats.local.json5"), `{ port: 9090, debug: true }`)
	cfg, err = ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "default", Port: 9090, Debug: true}, cfg)
}

func TestReadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cricstats.json5")
	write(t, path, `{ name: `)

	_, err := ReadConfig[testConfig](path)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))
	write(t, filepath.Join(root, "a", "cricstats.json5"), `{ name: "found" }`)

	cfg, err := ReadRecursively[testConfig](nested, "cricstats.json5")
	require.NoError(t, err)
	require.Equal(t, "found", cfg.Name)

	_, err = ReadRecursively[testConfig](nested, "missing.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("conf", "app.local.json5"), LocalPath(filepath.Join("conf", "app.json5")))
}
