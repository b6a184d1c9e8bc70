package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sphere-panels/internal/world"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3.0, cfg.Interaction.DragThreshold)
	assert.Equal(t, 0.006, cfg.Interaction.RotateSensitivity)
	assert.Equal(t, 0.92, cfg.Interaction.Damping)
	assert.Equal(t, 0.1, cfg.HitTest.FrontFacingMargin)

	w, err := world.Build(cfg.WorldOptions())
	require.NoError(t, err)
	assert.Equal(t, 7, w.PanelCount())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panels.yaml")
	writeFile(t, path, `
interaction:
  damping: 0.95
bodies:
  - radius: 4
    rows: [3]
  - position: [20, 0, 0]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.95, cfg.Interaction.Damping)
	assert.Equal(t, 0.006, cfg.Interaction.RotateSensitivity)
	require.Len(t, cfg.Bodies, 2)
	assert.Equal(t, 4.0, cfg.Bodies[0].Radius)
	assert.Equal(t, []int{3}, cfg.Bodies[0].Rows)
	require.NotNil(t, cfg.Bodies[0].Opacity)
	assert.Equal(t, 1.0, *cfg.Bodies[0].Opacity)
	assert.Equal(t, Vec3{20, 0, 0}, cfg.Bodies[1].Position)
	assert.Equal(t, []int{2, 3, 2}, cfg.Bodies[1].Rows)

	w, err := world.Build(cfg.WorldOptions())
	require.NoError(t, err)
	assert.Equal(t, 3+7, w.PanelCount())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PANELS_INTERACTION_IDLE_SPIN", "0")
	t.Setenv("PANELS_LOG_LEVEL", "debug")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Interaction.IdleSpin)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panels.yaml")
	writeFile(t, path, "interaction:\n  damping: 1.5\n")
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)

	writeFile(t, path, "bodies: []\n")
	_, err = Load(path)
	require.ErrorIs(t, err, ErrInvalid)

	writeFile(t, path, "window: [\n")
	_, err = Load(path)
	require.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "panels.yaml")
	want := Default()
	want.Interaction.RotateSensitivity = 0.01
	want.Debug.ShowFPS = true
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"window":    func(c *Config) { c.Window.Width = 0 },
		"fov":       func(c *Config) { c.Camera.FOV = 180 },
		"camera":    func(c *Config) { c.Camera.Target = c.Camera.Position },
		"distance":  func(c *Config) { c.Camera.MaxDistance = 1 },
		"epsilon":   func(c *Config) { c.Interaction.Epsilon = 0 },
		"margin":    func(c *Config) { c.HitTest.FrontFacingMargin = 1 },
		"duration":  func(c *Config) { c.View.FaceDuration = -1 },
		"radius":    func(c *Config) { c.Bodies[0].Radius = -1 },
		"opacity":   func(c *Config) { c.Bodies[0].Opacity = Float(2) },
		"no bodies": func(c *Config) { c.Bodies = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestWatch_Reloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panels.yaml")
	writeFile(t, path, "interaction:\n  damping: 0.9\n")

	changed := make(chan Config, 4)
	require.NoError(t, Watch(path, func(c Config) { changed <- c }, nil))
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "interaction:\n  damping: 0.8\n")

	select {
	case cfg := <-changed:
		assert.Equal(t, 0.8, cfg.Interaction.Damping)
		assert.Equal(t, 0.006, cfg.Interaction.RotateSensitivity)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}
}

func TestLoadDotEnv(t *testing.T) {
	// Register cleanup for every key the file may export, then start unset.
	for _, k := range []string{"PANELS_LOG_LEVEL", "PANELS_INTERACTION_DAMPING", "OTHER_KEY"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("PANELS_INTERACTION_DAMPING", "0.9")

	path := filepath.Join(t.TempDir(), ".env")
	body := "# local overrides\nPANELS_LOG_LEVEL=debug\nPANELS_INTERACTION_DAMPING=0.5\nOTHER_KEY=x\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	n, err := LoadDotEnv(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "debug", os.Getenv("PANELS_LOG_LEVEL"))
	assert.Equal(t, "0.9", os.Getenv("PANELS_INTERACTION_DAMPING"))
	_, set := os.LookupEnv("OTHER_KEY")
	assert.False(t, set)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.InDelta(t, 0.9, cfg.Interaction.Damping, 1e-12)
}

func TestLoadDotEnv_Missing(t *testing.T) {
	n, err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoad_ZeroOpacityIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panels.yaml")
	writeFile(t, path, `
bodies:
  - opacity: 0
  - position: [20, 0, 0]
    opacity: 0.4
  - position: [-20, 0, 0]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Bodies, 3)
	want := []float64{0, 0.4, 1}
	opts := cfg.WorldOptions()
	for i, o := range want {
		require.NotNil(t, cfg.Bodies[i].Opacity)
		assert.Equal(t, o, *cfg.Bodies[i].Opacity)
		assert.Equal(t, o, opts.Bodies[i].Opacity)
	}
}
