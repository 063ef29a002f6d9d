package wtf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/evilaliv3/tracing-framework/pkg/wtf/buffer"
)

// Config controls buffer sizing and trace output.
type Config struct {
	// BufferSoftLimit caps each thread buffer, in 32-bit entries. Past the
	// cap the thread keeps running but its trace tail is dropped.
	BufferSoftLimit int `yaml:"buffer_soft_limit"`

	// BufferChunkSize is the initial storage chunk of a thread buffer, in
	// entries.
	BufferChunkSize int `yaml:"buffer_chunk_size"`

	Output OutputConfig `yaml:"output"`
}

type OutputConfig struct {
	// Path names the trace artifact; FillDefault sets it to
	// "trace.wtf-trace". Runtime.SaveToFile and wtftool record take their
	// output path from the caller and do not read this field.
	Path string `yaml:"path"`

	// Compress frames the artifact with zstd.
	Compress bool `yaml:"compress"`
}

func (c *Config) FillDefault() {
	if c.BufferSoftLimit == 0 {
		c.BufferSoftLimit = buffer.DefaultSoftLimit
	}
	if c.BufferChunkSize == 0 {
		c.BufferChunkSize = buffer.DefaultChunkEntries
	}
	if c.Output.Path == "" {
		c.Output.Path = "trace.wtf-trace"
	}
}

// LoadConfig reads a yaml config from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	c.FillDefault()
	return c, nil
}
