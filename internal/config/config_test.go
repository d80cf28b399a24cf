package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bake.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
assets:
  path: /srv/assets
  blocks:
    - name: stone
    - name: glass
      transparent: true
bake:
  workers: 6
  queue_size: 32
  device_budget_mb: 2
metrics:
  addr: ":9100"
world:
  seed: 42
  radius: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/assets", cfg.AssetsPath())
	assert.Equal(t, []BlockConfig{{Name: "stone"}, {Name: "glass", Transparent: true}}, cfg.Assets.Blocks)
	assert.Equal(t, 6, cfg.Workers())
	assert.Equal(t, 32, cfg.QueueSize())
	assert.Equal(t, 2*1024*1024, cfg.DeviceBudgetBytes())
	assert.Equal(t, ":9100", cfg.MetricsAddr())
	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.Equal(t, 3, cfg.World.Radius)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "bake:\n  workers: 3\n")
	t.Setenv("BAKE_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers())
}

func TestLoadWithoutFileUsesFallbacks(t *testing.T) {
	t.Setenv("BAKE_CONFIG", "")
	t.Setenv("BAKE_ASSETS", "")
	t.Setenv("BAKE_QUEUE_SIZE", "")
	t.Setenv("BAKE_METRICS_ADDR", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "assets", cfg.AssetsPath())
	assert.Equal(t, 64, cfg.QueueSize())
	assert.Empty(t, cfg.MetricsAddr())
}

func TestEnvFallbackPriority(t *testing.T) {
	t.Setenv("BAKE_WORKERS", "12")
	t.Setenv("BAKE_QUEUE_SIZE", "not-a-number")

	cfg := &Config{}
	assert.Equal(t, 12, cfg.Workers(), "env beats default")
	assert.Equal(t, 64, cfg.QueueSize(), "bad env value is ignored")

	cfg.Bake.Workers = 2
	assert.Equal(t, 2, cfg.Workers(), "config beats env")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "bake: [unclosed"))
	assert.Error(t, err)
}

func TestSettingsClamp(t *testing.T) {
	workers, radius := GetWorkers(), GetChunkRadius()
	t.Cleanup(func() {
		SetWorkers(workers)
		SetChunkRadius(radius)
	})

	SetWorkers(0)
	assert.Equal(t, 1, GetWorkers())
	SetWorkers(1000)
	assert.Equal(t, 64, GetWorkers())

	SetChunkRadius(-3)
	assert.Equal(t, 0, GetChunkRadius())
	assert.Equal(t, 1, GetChunkCount())
	SetChunkRadius(2)
	assert.Equal(t, 25, GetChunkCount())
	SetChunkRadius(99)
	assert.Equal(t, 16, GetChunkRadius())
}

func TestApply(t *testing.T) {
	workers, radius := GetWorkers(), GetChunkRadius()
	t.Cleanup(func() {
		SetWorkers(workers)
		SetChunkRadius(radius)
	})

	Apply(&Config{Bake: BakeConfig{Workers: 5}, World: WorldConfig{Radius: 4}})
	assert.Equal(t, 5, GetWorkers())
	assert.Equal(t, 4, GetChunkRadius())
}
