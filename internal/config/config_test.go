package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"threef/internal/assist"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.False(t, c.HasCredential())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threef", "config.yaml")
	c := Default()
	c.APIKey = "secret"
	c.Backend = assist.BackendSDK
	c.Debounce = Duration(2 * time.Second)
	c.AutoPolish = true

	require.NoError(t, Save(path, c))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	dir, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dir.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api_key: secret")
	assert.Contains(t, string(data), "debounce: 2s")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: abc\nrefresh_interval: 2s\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", c.APIKey)
	assert.Equal(t, "gemini-2.0-flash", c.Model)
	assert.Equal(t, MaxRefreshInterval, c.RefreshInterval.D(), "refresh is clamped")
	assert.Equal(t, 5*time.Second, c.Debounce.D())
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"backend":  "backend: grpc\n",
		"duration": "timeout: soon\n",
		"yaml":     "api_key: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveCredentialKeepsOtherFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: gemini-pro\napi_key: old\n"), 0o600))

	c, err := SaveCredential(path, "  new  ")
	require.NoError(t, err)
	assert.Equal(t, "new", c.APIKey)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "new", got.APIKey)
	assert.Equal(t, "gemini-pro", got.Model)
}

func TestResolveAndPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".threef", "config.yaml"), p)

	p, err = Resolve("~/other.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "other.yaml"), p)

	c := Default()
	assert.Equal(t, filepath.Join(home, ".threef", "threef.log"), c.LogPath())
	p, err = c.SavePath("board.png")
	require.NoError(t, err)
	assert.Equal(t, "board.png", p)

	c.SaveDirectory = "~/exports"
	p, err = c.SavePath("board.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "exports", "board.png"), p)
	_, err = os.Stat(filepath.Join(home, "exports"))
	assert.NoError(t, err)
}

func TestSavePathReportsUnusableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "exports")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o600))

	c := Default()
	c.SaveDirectory = filepath.Join(blocker, "nested")
	_, err := c.SavePath("board.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save directory")
}

func TestWatchReloadsAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Save(path, Default()))

	changes := make(chan *Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := Watch(ctx, path, nil, func(c *Config) { changes <- c })
	require.NoError(t, err)

	_, err = SaveCredential(path, "edited")
	require.NoError(t, err)

	select {
	case c := <-changes:
		assert.Equal(t, "edited", c.APIKey)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the file changed")
	}

	w.Close()
}

func TestWatchStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	w, err := Watch(ctx, filepath.Join(t.TempDir(), "config.yaml"), nil, func(*Config) {})
	require.NoError(t, err)

	cancel()
	w.Close()
}
