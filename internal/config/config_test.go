package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 5000, cfg.Model.MaxFeatures)
	assert.Equal(t, 0.1, cfg.Model.SmoothingAlpha)
	assert.Equal(t, 0.2, cfg.Training.TestFraction)
	assert.Equal(t, int64(42), cfg.Training.Seed)
	assert.Equal(t, 1000, cfg.Inference.MaxInputLength)
	assert.Equal(t, 10, cfg.Inference.MaxBatchSize)
	assert.Equal(t, 3, cfg.Inference.TopK)
	assert.Equal(t, "memory", cfg.Cache.Driver)
}

func TestLoad_YAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8080
model:
  max_features: 2000
training:
  accuracy_floor: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2000, cfg.Model.MaxFeatures)
	assert.Equal(t, 0.5, cfg.Training.AccuracyFloor)
	// Untouched sections keep defaults.
	assert.Equal(t, 0.2, cfg.Training.TestFraction)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MODELS_DIR", "/srv/models")
	t.Setenv("AUDIT_DATABASE_URL", "sqlite:/srv/predictions.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/srv/models", cfg.Paths.ModelsDir)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, "sqlite", cfg.Audit.Driver)
	assert.Equal(t, "/srv/predictions.db", cfg.AuditDSN())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad cache driver", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"bad ngram range", func(c *Config) { c.Model.NGramMin = 3; c.Model.NGramMax = 1 }},
		{"bad test fraction", func(c *Config) { c.Training.TestFraction = 1.5 }},
		{"bad top k", func(c *Config) { c.Inference.TopK = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}
