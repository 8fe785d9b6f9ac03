package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "docker", cfg.DockerBin)
	assert.Equal(t, 2000, cfg.OutputLimit)
	assert.False(t, cfg.NoCache)
	assert.Equal(t, 6, cfg.MaxDepth)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "scan_root: " + dir + "\noutput_limit: 50\nno_cache: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ScanRoot)
	assert.Equal(t, 50, cfg.OutputLimit)
	assert.True(t, cfg.NoCache)
}

func TestValidateRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty scan root", Config{OutputLimit: 10, MaxDepth: 3}},
		{"missing scan root", Config{ScanRoot: filepath.Join(dir, "nope"), OutputLimit: 10, MaxDepth: 3}},
		{"zero output limit", Config{ScanRoot: dir, OutputLimit: 0, MaxDepth: 3}},
		{"zero max depth", Config{ScanRoot: dir, OutputLimit: 10, MaxDepth: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}
