// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the commands.
// Zero values are replaced by Default when a file is loaded.
type Config struct {
	Parser ParserConfig `toml:"parser" yaml:"parser"`
	Store  StoreConfig  `toml:"store" yaml:"store"`
	Server ServerConfig `toml:"server" yaml:"server"`
	Data   DataConfig   `toml:"data" yaml:"data"`
}

type ParserConfig struct {
	// MaxDepth limits bracket nesting.
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
}

type StoreConfig struct {
	// Path is the SQLite database file. Empty means in-memory.
	Path string `toml:"path" yaml:"path"`
}

type ServerConfig struct {
	Addr    string   `toml:"addr" yaml:"addr"`
	Timeout Duration `toml:"timeout" yaml:"timeout"` // auto-shutdown, 0 to run until signaled
}

type DataConfig struct {
	// Dir is where ingested files are read from.
	Dir string `toml:"dir" yaml:"dir"`
	// Ext is the extension of notation files.
	Ext string `toml:"ext" yaml:"ext"`
}

// Duration is a time.Duration written as a string like "90s" in config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Parser: ParserConfig{MaxDepth: 1024},
		Server: ServerConfig{Addr: ":8787"},
		Data:   DataConfig{Dir: ".", Ext: ".brk"},
	}
}

// Load reads a TOML or YAML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config format %q", path, ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Parser.MaxDepth < 1 {
		return fmt.Errorf("parser.max_depth must be at least 1, got %d", c.Parser.MaxDepth)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.Timeout.Duration < 0 {
		return fmt.Errorf("server.timeout must not be negative")
	}
	if c.Data.Ext != "" && !strings.HasPrefix(c.Data.Ext, ".") {
		return fmt.Errorf("data.ext must start with a dot, got %q", c.Data.Ext)
	}
	return nil
}
