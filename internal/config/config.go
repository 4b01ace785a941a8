package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAnnotationExt   = ".TextGrid"
	DefaultAudioExt        = ".wav"
	DefaultResampleQuality = 4

	// bounds accepted by beep.Resample
	minResampleQuality = 1
	maxResampleQuality = 64
)

// Config holds everything the conversion pipeline needs. A zero
// ResampleRate keeps the native rate of every recording.
type Config struct {
	AnnotationExt   string `yaml:"annotation_ext"`
	AudioExt        string `yaml:"audio_ext"`
	ResampleRate    int    `yaml:"resample_rate"`
	ResampleQuality int    `yaml:"resample_quality"`
	Strict          bool   `yaml:"strict"`
	Workers         int    `yaml:"workers"`
	Transcode       bool   `yaml:"transcode"`
	TempDir         string `yaml:"temp_dir"`
}

func Default() *Config {
	return &Config{
		AnnotationExt:   DefaultAnnotationExt,
		AudioExt:        DefaultAudioExt,
		ResampleQuality: DefaultResampleQuality,
		Workers:         runtime.NumCPU(),
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.AnnotationExt, ".") {
		return fmt.Errorf("annotation_ext %q must start with a dot", c.AnnotationExt)
	}
	if !strings.HasPrefix(c.AudioExt, ".") {
		return fmt.Errorf("audio_ext %q must start with a dot", c.AudioExt)
	}
	if c.ResampleRate < 0 {
		return fmt.Errorf("resample_rate must not be negative, got %d", c.ResampleRate)
	}
	if c.ResampleQuality < minResampleQuality || c.ResampleQuality > maxResampleQuality {
		return fmt.Errorf(
			"resample_quality must be between %d and %d, got %d",
			minResampleQuality,
			maxResampleQuality,
			c.ResampleQuality,
		)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}
