package fyne

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// tempoFileExtensions are the containers whose tags can carry a BPM value.
var tempoFileExtensions = []string{".mp3", ".m4a", ".mp4", ".aac", ".flac", ".ogg", ".opus"}

// TempoFileDialog asks for an audio file to read the tempo tag from.
type TempoFileDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewTempoFileDialog creates a new tempo file dialog.
func NewTempoFileDialog(window fyne.Window, callback func(string), logger *slog.Logger) *TempoFileDialog {
	return &TempoFileDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the file dialog.
func (d *TempoFileDialog) Show() {
	dlg := dialog.NewFileOpen(d.onChosen, d.window)
	dlg.SetFilter(storage.NewExtensionFileFilter(tempoFileExtensions))
	dlg.Show()
}

func (d *TempoFileDialog) onChosen(reader fyne.URIReadCloser, err error) {
	if err != nil {
		d.logger.Error("tempo file dialog error", slog.Any("error", err))
		return
	}
	if reader == nil {
		return // User cancelled
	}
	defer reader.Close()

	if d.callback != nil {
		d.callback(reader.URI().Path())
	}
}
