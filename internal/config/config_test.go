package config

import (
	"os"
	"path/filepath"
	"testing"

	"image-compressor-go/internal/compressor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig_BuiltInJobs(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "images", cfg.ImagesDir)
	assert.True(t, cfg.FailOnError)
	assert.Equal(t, []compressor.Job{
		{Source: "background.png", Destination: "background.jpg", Quality: 80, MaxWidth: 1920},
		{Source: "background2.png", Destination: "background2.jpg", Quality: 80, MaxWidth: 1920},
		{Source: "LocationalAstro.png", Destination: "LocationalAstro.jpg", Quality: 85, MaxWidth: 1200},
		{Source: "logo-large.png", Destination: "logo-large.jpg", Quality: 90, MaxWidth: 800},
	}, cfg.Jobs)
}

func TestResolvedJobs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jobs = append(cfg.Jobs[:1], compressor.Job{
		Source: "/abs/in.png", Destination: "out.jpg", Quality: 70, MaxWidth: 100,
	})

	jobs := cfg.ResolvedJobs()
	assert.Equal(t, filepath.Join("images", "background.png"), jobs[0].Source)
	assert.Equal(t, filepath.Join("images", "background.jpg"), jobs[0].Destination)
	assert.Equal(t, "/abs/in.png", jobs[1].Source)
	assert.Equal(t, filepath.Join("images", "out.jpg"), jobs[1].Destination)

	// the configured list itself is untouched
	assert.Equal(t, "background.png", cfg.Jobs[0].Source)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
images_dir: static/img
fail_on_error: false
orientation_source: NONE
optimizer: none
jobs:
  - source: hero.png
    destination: hero.jpg
    quality: 75
    max_width: 1600
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "static/img", cfg.ImagesDir)
	assert.False(t, cfg.FailOnError)
	assert.Equal(t, OrientationNone, cfg.OrientationSource)
	assert.Equal(t, OptimizerNone, cfg.Optimizer)
	assert.Equal(t, []compressor.Job{{Source: "hero.png", Destination: "hero.jpg", Quality: 75, MaxWidth: 1600}}, cfg.Jobs)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Logging.MaxSize)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_DefaultsWhenOnlyScalarsSet(t *testing.T) {
	path := writeConfig(t, "images_dir: assets\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "assets", cfg.ImagesDir)
	assert.Equal(t, DefaultJobs(), cfg.Jobs)
}

func TestLoadConfig_Env(t *testing.T) {
	path := writeConfig(t, "images_dir: assets\n")
	t.Setenv("IMAGE_COMPRESSOR_IMAGES_DIR", "from-env")
	t.Setenv("IMAGE_COMPRESSOR_SERVER_PORT", "9090")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ImagesDir)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"quality too low", func(c *Config) { c.Jobs[0].Quality = 0 }},
		{"quality too high", func(c *Config) { c.Jobs[0].Quality = 101 }},
		{"zero width", func(c *Config) { c.Jobs[0].MaxWidth = 0 }},
		{"empty source", func(c *Config) { c.Jobs[0].Source = "" }},
		{"same paths", func(c *Config) { c.Jobs[0].Destination = c.Jobs[0].Source }},
		{"no jobs", func(c *Config) { c.Jobs = nil }},
		{"orientation", func(c *Config) { c.OrientationSource = "magic" }},
		{"optimizer", func(c *Config) { c.Optimizer = "mozjpeg" }},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
