package wtf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evilaliv3/tracing-framework/pkg/wtf/buffer"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
buffer_soft_limit: 4096
output:
  path: /tmp/demo.wtf-trace
  compress: true
`), 0644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 4096, c.BufferSoftLimit)
	require.Equal(t, buffer.DefaultChunkEntries, c.BufferChunkSize)
	require.Equal(t, "/tmp/demo.wtf-trace", c.Output.Path)
	require.True(t, c.Output.Compress)
}

func TestConfigFillDefault(t *testing.T) {
	c := &Config{}
	c.FillDefault()
	require.Equal(t, buffer.DefaultSoftLimit, c.BufferSoftLimit)
	require.Equal(t, buffer.DefaultChunkEntries, c.BufferChunkSize)
	require.Equal(t, "trace.wtf-trace", c.Output.Path)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
