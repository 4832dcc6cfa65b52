package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(f)
	require.NoError(t, f.Parse(args))
	return f
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mindmap.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(flags(t))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Server, cfg.Server)
	assert.Equal(t, want.Placement, cfg.Placement)
	assert.Equal(t, want.Simulation, cfg.Simulation)
	assert.Equal(t, want.Camera, cfg.Camera)
	assert.Equal(t, want.Suggest, cfg.Suggest)
	assert.Equal(t, 20, cfg.History.Capacity)
	assert.Empty(t, cfg.File)
}

func TestLoadLayers(t *testing.T) {
	path := writeFile(t, `
watch = true

[server]
port = 9000
tick_rate = "20ms"

[placement]
distance = 150

[camera]
duration = "1s"
`)
	t.Setenv("MINDMAP_SERVER_PORT", "9100")
	t.Setenv("MINDMAP_SIMULATION_ALPHA_MIN", "0.01")

	cfg, err := Load(flags(t, "--config", path, "--width", "1024", "-vv"))
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.True(t, cfg.Watch)
	assert.Equal(t, 9100, cfg.Server.Port, "env beats file")
	assert.Equal(t, 20*time.Millisecond, cfg.Server.TickRate)
	assert.Equal(t, 150.0, cfg.Placement.Distance)
	assert.Equal(t, time.Second, cfg.Camera.Duration)
	assert.Equal(t, 0.01, cfg.Simulation.AlphaMin)
	assert.Equal(t, 1024.0, cfg.Viewport.Width)
	assert.Equal(t, 600.0, cfg.Viewport.Height)
	assert.Equal(t, 2, cfg.Log.Verbose)
}

func TestFlagsBeatEnv(t *testing.T) {
	t.Setenv("MINDMAP_SERVER_PORT", "9100")

	cfg, err := Load(flags(t, "--port", "9200"))
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative distance", "[placement]\ndistance = -1"},
		{"inverted zoom", "[camera]\nmin_zoom = 2.0\nmax_zoom = 1.0"},
		{"repulsive charge sign", "[simulation]\ncharge = 10.0"},
		{"bad endpoint", "[suggest]\nendpoint = \"not a url\""},
		{"unknown level", "[log]\nverbosity = \"loud\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(flags(t, "--config", writeFile(t, tt.body)))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingNamedFile(t *testing.T) {
	_, err := Load(flags(t, "--config", filepath.Join(t.TempDir(), "nope.toml")))
	assert.Error(t, err)
}

func TestSessionConfig(t *testing.T) {
	cfg := Default()
	cfg.Viewport.Width = 1280
	cfg.History.Capacity = 5

	s := cfg.Session()
	assert.Equal(t, 1280.0, s.Width)
	assert.Equal(t, 5, s.HistoryCapacity)
	assert.Equal(t, cfg.Simulation, s.Simulation)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.tick_rate", envKey("MINDMAP_SERVER_TICK_RATE"))
	assert.Equal(t, "watch", envKey("MINDMAP_WATCH"))
}
