package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "threef.log")
	log, err := New(path, "info")
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("connection added", zap.String("from", "a:right"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "connection added", entry["msg"])
	assert.Equal(t, "a:right", entry["from"])
}

func TestNewDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threef.log")
	log, err := New(path, "debug")
	require.NoError(t, err)

	log.Debug("visible")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "x.log"), "loud")
	assert.Error(t, err)
}

func TestNewWithoutPathIsNop(t *testing.T) {
	log, err := New("", "info")
	require.NoError(t, err)
	assert.NotNil(t, log)
}
