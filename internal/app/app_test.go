package app

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/testutil"
)

func headlessConfig(t *testing.T) Config {
	t.Helper()
	config := DefaultConfig()
	config.LogLevel = slog.LevelError
	config.Headless = true
	config.FrameRate = 120
	config.CaptureFrames = 3
	config.WindowWidth = 64
	config.WindowHeight = 32
	config.CaptureScale = 2
	config.CapturePath = filepath.Join(t.TempDir(), "out", "capture.png")
	return config
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "com.beatscope.app", config.AppID)
	assert.Equal(t, "Beatscope", config.AppName)
	assert.Equal(t, 60, config.FrameRate)
	assert.Equal(t, 32, config.Bands)
	assert.Equal(t, 120.0, config.Tempo)
	assert.False(t, config.Headless)
	assert.NoError(t, config.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty app id", func(c *Config) { c.AppID = "" }, "AppID"},
		{"zero frame rate", func(c *Config) { c.FrameRate = 0 }, "FrameRate"},
		{"negative bands", func(c *Config) { c.Bands = -1 }, "Bands"},
		{"negative tempo", func(c *Config) { c.Tempo = -5 }, "Tempo"},
		{"zero width", func(c *Config) { c.WindowWidth = 0 }, "WindowSize"},
		{"zero scale", func(c *Config) { c.CaptureScale = 0 }, "CaptureScale"},
		{"headless without frames", func(c *Config) { c.Headless = true; c.CaptureFrames = 0 }, "CaptureFrames"},
		{"headless without path", func(c *Config) { c.Headless = true; c.CapturePath = "" }, "CapturePath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)

			err := config.Validate()
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNewApplication_RejectsInvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.FrameRate = -1

	app, err := NewApplication(config)
	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestApplication_HeadlessCapture(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	config := headlessConfig(t)
	app, err := NewApplication(config)
	require.NoError(t, err)
	assert.Nil(t, app.GetFyneApp())
	assert.Nil(t, app.GetMainWindow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, app.Run(ctx))

	data, err := os.ReadFile(config.CapturePath)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 128, 64), img.Bounds(), "capture is in device pixels")

	assert.GreaterOrEqual(t, app.GetVisualizer().Stats().Frames, uint64(config.CaptureFrames))
	assert.True(t, app.GetFeatureService().Running())

	require.NoError(t, app.Shutdown())
	assert.False(t, app.GetVisualizer().Mounted())
	assert.False(t, app.GetFeatureService().Running())
}

func TestApplication_HeadlessCancelled(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	config := headlessConfig(t)
	config.CaptureFrames = 1 << 20
	app, err := NewApplication(config)
	require.NoError(t, err)
	defer app.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, app.Run(ctx), context.DeadlineExceeded)

	_, err = os.Stat(config.CapturePath)
	assert.True(t, os.IsNotExist(err), "no capture when cancelled")
}

func TestApplication_TempoFromTag(t *testing.T) {
	dir := t.TempDir()
	tagged := filepath.Join(dir, "tagged.mp3")
	require.NoError(t, os.WriteFile(tagged, testutil.ID3v23("TBPM", "128"), 0o600))

	tests := []struct {
		name string
		file string
		want float64
	}{
		{"tag overrides tempo", tagged, 128},
		{"missing file keeps tempo", filepath.Join(dir, "missing.mp3"), 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := headlessConfig(t)
			config.Tempo = 90
			config.TempoFile = tt.file

			app, err := NewApplication(config)
			require.NoError(t, err)
			defer app.Shutdown()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			require.NoError(t, app.Run(ctx))

			latest, ok := app.GetFeatureService().Latest()
			require.True(t, ok)
			assert.Equal(t, tt.want, latest.Tempo)
		})
	}
}

func TestApplication_WindowLifecycle(t *testing.T) {
	config := DefaultConfig()
	config.LogLevel = slog.LevelError
	config.TestFyneApp = test.NewTempApp(t)

	app, err := NewApplication(config)
	require.NoError(t, err)
	require.NotNil(t, app.GetMainWindow())
	assert.Equal(t, config.TestFyneApp, app.GetFyneApp())
	assert.Equal(t, "Waiting for audio features", app.GetMainWindow().Status())

	app.GetMainWindow().Show()
	vis := app.GetVisualizer()
	assert.True(t, vis.Mounted())
	assert.Equal(t, domain.LoopScheduled, vis.LoopState())

	// Shutdown
	require.NoError(t, app.Shutdown())
	assert.False(t, vis.Mounted())

	// Shutdown again should not panic
	assert.NoError(t, app.Shutdown())
}

func TestVersionInfo(t *testing.T) {
	v := VersionInfo{Version: "1.2.0", GitCommit: "abc123", BuildTime: "today", GoVersion: "go1.25.0"}
	assert.Equal(t, "1.2.0", v.Short())
	assert.Equal(t, "Beatscope 1.2.0 (commit: abc123, built: today, go1.25.0)", v.FullString())

	v.GitTag = "v1.2.0"
	assert.Equal(t, "v1.2.0", v.Short())
}
