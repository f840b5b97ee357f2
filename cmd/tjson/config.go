package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Neumenon/tjson/node"
	"github.com/Neumenon/tjson/pipe"
	"github.com/Neumenon/tjson/stream"
)

// config is the file form of the defaults. Flags take precedence.
type config struct {
	MaxDepth     int    `yaml:"max_depth"`
	ChunkSize    int    `yaml:"chunk_size"`
	MaxNumberLen int    `yaml:"max_number_len"`
	Charset      string `yaml:"charset"`
	SeqMode      string `yaml:"seq_mode"`
}

func defaultConfig() config {
	return config{
		MaxDepth:     node.DefaultMaxDepth,
		ChunkSize:    pipe.DefaultChunkSize,
		MaxNumberLen: pipe.DefaultMaxNumberLen,
		Charset:      "utf-8",
		SeqMode:      stream.ModeSeq.String(),
	}
}

// loadConfig reads a YAML config file. Missing keys keep their defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	if cfg.MaxDepth <= 0 {
		return cfg, errors.Errorf("config %s: max_depth must be positive, got %d", path, cfg.MaxDepth)
	}
	if _, ok := stream.ParseMode(cfg.SeqMode); !ok {
		return cfg, errors.Errorf("config %s: unknown seq_mode %q", path, cfg.SeqMode)
	}
	return cfg, nil
}

func (c config) pipeOptions() pipe.Options {
	return pipe.Options{MaxDepth: c.MaxDepth, ChunkSize: c.ChunkSize, MaxNumberLen: c.MaxNumberLen}
}

func (c config) seqMode() stream.Mode {
	m, _ := stream.ParseMode(c.SeqMode)
	return m
}
