package fyne

import (
	"log/slog"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/beatscope/internal/adapter/ui/fyne/widgets"
)

// WindowConfig configures the main window.
type WindowConfig struct {
	Title  string
	Width  float32
	Height float32
	Logger *slog.Logger
}

// MainWindow is the main UI window implementing the UIView interface.
// It is a "dumb view": the presenter decides what it shows.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger

	// UI components
	pulse       *widgets.PulseView
	status      *widget.Label
	tempoButton *widget.Button
	tempoDialog *TempoFileDialog

	// Lifecycle management
	closeOnce sync.Once
	onClosed  func()

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window.
func NewMainWindow(app fyneapp.App, cfg WindowConfig) *MainWindow {
	w := &MainWindow{app: app, logger: cfg.Logger}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}

	w.window = app.NewWindow(cfg.Title)
	w.buildUI()
	w.window.Resize(fyneapp.NewSize(cfg.Width, cfg.Height))
	w.window.SetOnClosed(w.handleClosed)

	return w
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	w.pulse = widgets.NewPulseView()

	w.status = widget.NewLabel("")
	w.status.Truncation = fyneapp.TextTruncateEllipsis
	w.status.TextStyle = fyneapp.TextStyle{Italic: true}

	w.tempoDialog = NewTempoFileDialog(w.window, w.onTempoFileChosen, w.logger.With(slog.String("component", "tempo_dialog")))
	w.tempoButton = widget.NewButtonWithIcon("Tempo from file", theme.FileAudioIcon(), w.tempoDialog.Show)
	w.tempoButton.Importance = widget.LowImportance

	bottom := container.NewBorder(nil, nil, nil, w.tempoButton, w.status)
	w.window.SetContent(container.NewBorder(nil, bottom, nil, nil, w.pulse))
}

func (w *MainWindow) onTempoFileChosen(path string) {
	if w.presenter != nil {
		go w.presenter.LoadTempoFile(path)
	}
}

// Pulse returns the visualizer view.
func (w *MainWindow) Pulse() *widgets.PulseView {
	return w.pulse
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
}

// SetOnClosed registers a callback run once after the window closes.
func (w *MainWindow) SetOnClosed(fn func()) {
	w.onClosed = fn
}

// Show shows the window and mounts the visualizer.
func (w *MainWindow) Show() {
	w.window.Show()
	if w.presenter != nil {
		box, dpr := w.pulse.Box()
		w.presenter.Mount(box, dpr)
	}
}

// ShowAndRun shows the window and runs the application.
// This blocks until the application quits.
func (w *MainWindow) ShowAndRun() {
	w.Show()
	w.app.Run()
}

// Close closes the window.
func (w *MainWindow) Close() {
	w.window.Close()
}

func (w *MainWindow) handleClosed() {
	w.closeOnce.Do(func() {
		if w.presenter != nil {
			w.presenter.Shutdown()
		}
		if w.onClosed != nil {
			w.onClosed()
		}
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// SetStatus implements UIView. Safe to call from any goroutine.
func (w *MainWindow) SetStatus(text string) {
	fyneapp.Do(func() {
		w.status.SetText(text)
	})
}

// Status returns the status line text.
func (w *MainWindow) Status() string {
	return w.status.Text
}

var _ UIView = (*MainWindow)(nil)
