package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/packbench/internal/model"
)

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := model.DefaultBenchConfig()
	cfg.TimeLimit = model.Duration{Duration: 1500 * time.Millisecond}
	cfg.Algorithms = []string{"FirstFit"}
	cfg.Evolution.Selection = "comma"
	cfg.Evolution.MaxGenerations = 25

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultBenchConfig(), cfg)
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "time_limit = \"250ms\"\n\n[evolution]\nmu = 3\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.TimeLimit.Duration)
	assert.Equal(t, 3, cfg.Evolution.Mu)
	assert.Equal(t, 40, cfg.Evolution.Lambda)
	assert.Equal(t, "dual-ccm", cfg.LowerBound)
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"syntax":   "time_limit = ",
		"duration": "time_limit = \"soon\"",
		"negative": "time_limit = \"-1s\"",
		"unknown":  "colour = \"red\"",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".toml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaultConfigPath(t *testing.T) {
	assert.Equal(t, "config.toml", filepath.Base(DefaultConfigPath()))
	assert.Equal(t, ".packbench", filepath.Base(DefaultConfigDir()))
}
