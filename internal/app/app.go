// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/beatscope/internal/adapter/canvas/raster"
	"github.com/tejashwikalptaru/beatscope/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/beatscope/internal/adapter/feed"
	"github.com/tejashwikalptaru/beatscope/internal/adapter/scheduler"
	fyneui "github.com/tejashwikalptaru/beatscope/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/beatscope/internal/domain"
	"github.com/tejashwikalptaru/beatscope/internal/logger"
	"github.com/tejashwikalptaru/beatscope/internal/ports"
	"github.com/tejashwikalptaru/beatscope/internal/service"
	"github.com/tejashwikalptaru/beatscope/internal/visualizer"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	config Config

	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus *eventbus.SyncEventBus
	resize   *eventbus.ResizeSource
	canvas   *raster.Canvas

	// Frame scheduling: one of these is set depending on the mode
	animation *fyneui.AnimationScheduler
	ticker    *scheduler.Ticker

	// Services
	source         *feed.Synthetic
	featureService *service.FeatureService

	// Visualizer and UI
	visualizer *visualizer.Component
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	// Headless capture
	captured     chan struct{}
	capturedOnce sync.Once
	frames       atomic.Uint64

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name and window title
	AppName string

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// LogFormat is "text" or "json"
	LogFormat string

	// Headless renders without a window and writes a PNG capture
	Headless bool

	// FrameRate is the headless frame rate in frames per second
	FrameRate int

	// Bands is the number of band energies the synthetic feed produces
	Bands int

	// Tempo is the synthetic feed tempo in BPM (0 disables beats)
	Tempo float64

	// TempoFile, if set, is an audio file whose BPM tag overrides Tempo
	TempoFile string

	// WindowWidth and WindowHeight are the window size, or the capture box in headless mode
	WindowWidth  float32
	WindowHeight float32

	// CaptureFrames is how many frames to render before capturing in headless mode
	CaptureFrames int

	// CapturePath is where the headless PNG is written
	CapturePath string

	// CaptureScale is the device pixel ratio used in headless mode
	CaptureScale float64

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:         "com.beatscope.app",
		AppName:       "Beatscope",
		LogLevel:      loggerCfg.Level,
		LogFormat:     loggerCfg.Format,
		FrameRate:     scheduler.DefaultFrameRate,
		Bands:         feed.DefaultBands,
		Tempo:         feed.DefaultTempo,
		WindowWidth:   640,
		WindowHeight:  360,
		CaptureFrames: 30,
		CapturePath:   "beatscope.png",
		CaptureScale:  1,
	}
}

// Validate checks the configuration for values the application cannot run with.
func (c Config) Validate() error {
	switch {
	case c.AppID == "":
		return domain.NewValidationError("AppID", c.AppID, "must not be empty")
	case c.FrameRate <= 0:
		return domain.NewValidationError("FrameRate", c.FrameRate, "must be positive")
	case c.Bands < 0:
		return domain.NewValidationError("Bands", c.Bands, "must not be negative")
	case c.Tempo < 0 || math.IsNaN(c.Tempo) || math.IsInf(c.Tempo, 0):
		return domain.NewValidationError("Tempo", c.Tempo, "must be a finite, non-negative BPM")
	case c.WindowWidth <= 0 || c.WindowHeight <= 0:
		return domain.NewValidationError("WindowSize",
			fmt.Sprintf("%gx%g", c.WindowWidth, c.WindowHeight), "must be positive")
	case c.CaptureScale <= 0 || math.IsNaN(c.CaptureScale) || math.IsInf(c.CaptureScale, 0):
		return domain.NewValidationError("CaptureScale", c.CaptureScale, "must be a finite, positive ratio")
	}
	if c.Headless {
		if c.CaptureFrames <= 0 {
			return domain.NewValidationError("CaptureFrames", c.CaptureFrames, "must be positive in headless mode")
		}
		if c.CapturePath == "" {
			return domain.NewValidationError("CapturePath", c.CapturePath, "must be set in headless mode")
		}
	}
	return nil
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &Application{
		config:   config,
		captured: make(chan struct{}),
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	// Step 1: Create logger
	app.logger = logger.NewLogger(logger.Config{
		Level:  config.LogLevel,
		Format: config.LogFormat,
	})
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("app_name", config.AppName),
		slog.String("version", GetVersionInfo().FullString()),
		slog.Bool("headless", config.Headless))

	// Step 2: Create an event bus and the resize source on top of it
	app.eventBus = eventbus.NewSyncEventBus()
	app.eventBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	app.resize = eventbus.NewResizeSource(app.eventBus)

	// Step 3: Create the feature source
	tempo := config.Tempo
	if config.TempoFile != "" {
		bpm, err := feed.ReadTempoTag(config.TempoFile)
		if err != nil {
			// Non-fatal - keep the configured tempo
			app.logger.Warn("failed to read tempo tag",
				slog.String("path", config.TempoFile),
				slog.Any("error", err))
		} else {
			app.logger.Info("tempo read from tag",
				slog.String("path", config.TempoFile),
				slog.Float64("tempo", bpm))
			tempo = bpm
		}
	}
	app.source = feed.NewSynthetic(feed.SyntheticConfig{
		Bands:    config.Bands,
		Tempo:    tempo,
		Interval: feed.DefaultInterval,
	}, app.logger)

	// Step 4: Create services (with dependency injection)
	app.featureService = service.NewFeatureService(
		app.logger.With(slog.String("service", "feature")),
		app.source,
		app.eventBus,
	)

	// Step 5: Create the host (window or headless) and the visualizer
	var err error
	if config.Headless {
		err = app.buildHeadless()
	} else {
		err = app.buildWindow()
	}
	if err != nil {
		app.cancel()
		_ = app.eventBus.Close()
		return nil, err
	}

	return app, nil
}

// buildWindow wires the visualizer into a Fyne window driven by display refresh.
func (a *Application) buildWindow() error {
	if a.config.TestFyneApp != nil {
		a.fyneApp = a.config.TestFyneApp
	} else {
		a.fyneApp = fyneapp.NewWithID(a.config.AppID)
	}

	a.mainWindow = fyneui.NewMainWindow(a.fyneApp, fyneui.WindowConfig{
		Title:  a.config.AppName,
		Width:  a.config.WindowWidth,
		Height: a.config.WindowHeight,
		Logger: a.logger,
	})
	pulse := a.mainWindow.Pulse()

	canvas, err := raster.New(raster.WithPresentHook(pulse.SetFrame))
	if err != nil {
		return fmt.Errorf("failed to create canvas: %w", err)
	}
	a.canvas = canvas
	a.animation = fyneui.NewAnimationScheduler()

	a.visualizer = visualizer.New(visualizer.Options{
		Canvas:       a.canvas,
		Scheduler:    a.animation,
		ResizeSource: a.resize,
		Indicator:    pulse,
		Logger:       a.logger.With(slog.String("component", "visualizer")),
	})

	a.presenter = fyneui.NewPresenter(a.logger, a.eventBus, a.visualizer, a.mainWindow)
	a.presenter.SetTempoController(a.source)
	a.mainWindow.SetPresenter(a.presenter)
	pulse.SetOnResize(a.resize.Notify)
	return nil
}

// buildHeadless wires the visualizer to a fixed-rate ticker and an offscreen canvas.
func (a *Application) buildHeadless() error {
	canvas, err := raster.New(raster.WithPresentHook(a.onHeadlessFrame))
	if err != nil {
		return fmt.Errorf("failed to create canvas: %w", err)
	}
	a.canvas = canvas

	a.ticker = scheduler.NewTicker(a.config.FrameRate)
	a.ticker.SetLogger(a.logger.With(slog.String("component", "ticker")))

	a.visualizer = visualizer.New(visualizer.Options{
		Canvas:       a.canvas,
		Scheduler:    a.ticker,
		ResizeSource: a.resize,
		Logger:       a.logger.With(slog.String("component", "visualizer")),
	})

	a.presenter = fyneui.NewPresenter(a.logger, a.eventBus, a.visualizer, statusLog{a.logger})
	return nil
}

func (a *Application) onHeadlessFrame(image.Image) {
	if a.frames.Add(1) >= uint64(a.config.CaptureFrames) {
		a.capturedOnce.Do(func() { close(a.captured) })
	}
}

// Run starts the application. In window mode it blocks until the window
// closes; in headless mode until the capture is written. Cancelling ctx ends
// either mode early.
func (a *Application) Run(ctx context.Context) error {
	a.logger.Info("Beatscope started")

	if err := a.featureService.Start(a.ctx); err != nil {
		return fmt.Errorf("failed to start feature service: %w", err)
	}

	if a.config.Headless {
		return a.runHeadless(ctx)
	}

	stop := context.AfterFunc(ctx, func() {
		fyne.Do(a.mainWindow.Close)
	})
	defer stop()

	a.animation.Start()
	// Show and run UI (blocks until the window is closed)
	a.mainWindow.ShowAndRun()
	return nil
}

func (a *Application) runHeadless(ctx context.Context) error {
	if err := a.ticker.Start(a.ctx); err != nil {
		return fmt.Errorf("failed to start ticker: %w", err)
	}

	box := domain.NewBoxSize(float64(a.config.WindowWidth), float64(a.config.WindowHeight))
	a.presenter.Mount(box, a.config.CaptureScale)

	select {
	case <-a.captured:
	case <-ctx.Done():
		return ctx.Err()
	}

	start := time.Now()
	if err := a.writeCapture(a.config.CapturePath); err != nil {
		return err
	}
	a.logger.Info("capture written",
		slog.String("path", a.config.CapturePath),
		slog.Uint64("frames", a.frames.Load()),
		slog.Duration("encode_time", time.Since(start)))
	return nil
}

func (a *Application) writeCapture(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create capture directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create capture: %w", err)
	}
	if err := a.canvas.EncodePNG(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode capture: %w", err)
	}
	return f.Close()
}

// Shutdown gracefully shuts down the application.
// This should be called via deferring in main.go. Calling it again is a no-op.
func (a *Application) Shutdown() error {
	var errs []error

	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		// Shutdown presenter first so the visualizer stops requesting frames
		if a.presenter != nil {
			a.presenter.Shutdown()
		}

		if a.featureService != nil {
			if err := a.featureService.Shutdown(); err != nil {
				errs = append(errs, fmt.Errorf("feature service: %w", err))
			}
		}

		if a.animation != nil {
			a.animation.Stop()
		}
		if a.ticker != nil {
			if err := a.ticker.Close(); err != nil {
				errs = append(errs, fmt.Errorf("ticker: %w", err))
			}
		}

		a.cancel()

		if err := a.eventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}

		a.logger.Info("application shutdown complete",
			slog.Uint64("frames", a.visualizer.Stats().Frames))
	})

	return errors.Join(errs...)
}

// GetEventBus returns the application event bus.
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetFyneApp returns the Fyne app, or nil in headless mode.
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}

// GetVisualizer returns the visualizer component.
func (a *Application) GetVisualizer() *visualizer.Component {
	return a.visualizer
}

// GetFeatureService returns the feature service.
func (a *Application) GetFeatureService() *service.FeatureService {
	return a.featureService
}

// GetMainWindow returns the main window, or nil in headless mode.
func (a *Application) GetMainWindow() *fyneui.MainWindow {
	return a.mainWindow
}

// statusLog is the headless stand-in for the window status line.
type statusLog struct {
	logger *slog.Logger
}

func (s statusLog) SetStatus(text string) {
	s.logger.Info("status", slog.String("text", text))
}
