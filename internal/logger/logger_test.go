package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesFile(t *testing.T) {
	dir := t.TempDir()
	log, err := New(dir, "app", true)
	require.NoError(t, err)

	log.Info("hello")
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestNew_StdoutOnly(t *testing.T) {
	log, err := New("", "worker", false)
	require.NoError(t, err)
	assert.NotNil(t, log)
}
