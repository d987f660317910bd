// Package config loads the optional YAML configuration of jsf2segy.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"example.com/jsf2segy/internal/convert"
)

type LogConfig struct {
	Directory  string `yaml:"directory"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type OutputConfig struct {
	Extension string `yaml:"extension"`
}

type Config struct {
	TextHeader convert.TextDefaults `yaml:"textHeader"`
	Logs       LogConfig            `yaml:"logs"`
	Output     OutputConfig         `yaml:"output"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// Load reads path and fills every unset field with its default. Relative log
// directories are resolved against the directory of path.
func Load(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if dir := strings.TrimSpace(cfg.Logs.Directory); dir != "" && !filepath.IsAbs(dir) {
		cfg.Logs.Directory = filepath.Clean(filepath.Join(filepath.Dir(path), dir))
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := convert.DefaultText()
	t := &c.TextHeader
	if t.Client == "" {
		t.Client = def.Client
	}
	if t.Company == "" {
		t.Company = def.Company
	}
	if t.Manufacturer == "" {
		t.Manufacturer = def.Manufacturer
	}
	if t.Model == "" {
		t.Model = def.Model
	}
	if t.System == "" {
		t.System = def.System
	}
	if t.Note == "" {
		t.Note = def.Note
	}
	if c.Output.Extension == "" {
		c.Output.Extension = convert.DefaultExtension
	}
	if !strings.HasPrefix(c.Output.Extension, ".") {
		c.Output.Extension = "." + c.Output.Extension
	}
	if c.Logs.File == "" {
		c.Logs.File = "jsf2segy.log"
	}
	if c.Logs.MaxSizeMB <= 0 {
		c.Logs.MaxSizeMB = 25
	}
	if c.Logs.MaxAgeDays <= 0 {
		c.Logs.MaxAgeDays = 7
	}
	if c.Logs.MaxBackups <= 0 {
		c.Logs.MaxBackups = 5
	}
}

// LogPath is the rolling log file, or "" when file logging is disabled.
func (l LogConfig) LogPath() string {
	if l.Directory == "" {
		return ""
	}
	return filepath.Join(l.Directory, l.File)
}

// OpenLog returns a size-rotated writer for path using the limits in l.
func OpenLog(path string, l LogConfig) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    l.MaxSizeMB,
		MaxAge:     l.MaxAgeDays,
		MaxBackups: l.MaxBackups,
		Compress:   l.Compress,
	}, nil
}
