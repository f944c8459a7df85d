// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdhender/brackets/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1024, cfg.Parser.MaxDepth)
	assert.Equal(t, ":8787", cfg.Server.Addr)
	assert.Equal(t, ".brk", cfg.Data.Ext)
	assert.Empty(t, cfg.Store.Path)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "brackets.toml", `
[parser]
max_depth = 64

[store]
path = "data/brackets.db"

[server]
timeout = "90s"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Parser.MaxDepth)
	assert.Equal(t, "data/brackets.db", cfg.Store.Path)
	assert.Equal(t, 90*time.Second, cfg.Server.Timeout.Duration)
	// unset values keep their defaults
	assert.Equal(t, ":8787", cfg.Server.Addr)
	assert.Equal(t, ".", cfg.Data.Dir)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "brackets.yaml", `
parser:
  max_depth: 8
server:
  addr: "localhost:9000"
  timeout: 2m
data:
  dir: notes
  ext: .txt
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Parser.MaxDepth)
	assert.Equal(t, "localhost:9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Server.Timeout.Duration)
	assert.Equal(t, "notes", cfg.Data.Dir)
	assert.Equal(t, ".txt", cfg.Data.Ext)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unsupported format", "brackets.json", `{}`},
		{"bad toml", "brackets.toml", `[parser`},
		{"bad duration", "brackets.toml", "[server]\ntimeout = \"soon\"\n"},
		{"zero depth", "brackets.toml", "[parser]\nmax_depth = 0\n"},
		{"negative timeout", "brackets.yml", "server:\n  timeout: -1s\n"},
		{"ext without dot", "brackets.yml", "data:\n  ext: brk\n"},
		{"empty addr", "brackets.yml", "server:\n  addr: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
