// Package main is the production entry point for Beatscope.
//
// Beatscope renders live audio features as a bar visualizer:
// - A feature feed publishes snapshots on an event bus
// - The visualizer redraws every display frame on a density-correct surface
// - A headless mode renders offscreen and writes a PNG capture
//
// Build:
//
//	go build -o build/beatscope ./cmd
//
// Run:
//
//	./build/beatscope
//	./build/beatscope -headless -frames 60 -out capture.png
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tejashwikalptaru/beatscope/internal/app"
	"github.com/tejashwikalptaru/beatscope/internal/logger"
)

func main() {
	// Create default configuration
	config := app.DefaultConfig()

	var (
		showVersion bool
		logLevel    string
	)
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR")
	flag.BoolVar(&config.Headless, "headless", config.Headless, "render offscreen and write a PNG capture")
	flag.IntVar(&config.FrameRate, "fps", config.FrameRate, "headless frame rate")
	flag.IntVar(&config.Bands, "bands", config.Bands, "number of frequency bands")
	flag.Float64Var(&config.Tempo, "tempo", config.Tempo, "feed tempo in BPM, 0 disables beats")
	flag.StringVar(&config.TempoFile, "tempo-file", "", "audio file whose BPM tag sets the tempo")
	flag.Func("width", "window or capture width", float32Flag(&config.WindowWidth))
	flag.Func("height", "window or capture height", float32Flag(&config.WindowHeight))
	flag.IntVar(&config.CaptureFrames, "frames", config.CaptureFrames, "frames to render before capturing")
	flag.StringVar(&config.CapturePath, "out", config.CapturePath, "capture output path")
	flag.Float64Var(&config.CaptureScale, "scale", config.CaptureScale, "capture device pixel ratio")
	flag.Parse()

	if showVersion {
		fmt.Println(app.GetVersionInfo().FullString())
		return
	}
	if logLevel != "" {
		level, ok := logger.ParseLevel(logLevel)
		if !ok {
			log.Fatalf("Unknown log level %q", logLevel)
		}
		config.LogLevel = level
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create the application with dependency injection
	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	// Run application (blocks until the window closes or the capture is written)
	if err := application.Run(ctx); err != nil {
		log.Printf("Application error: %v", err)
	}
}

func float32Flag(dst *float32) func(string) error {
	return func(s string) error {
		var v float32
		if _, err := fmt.Sscan(s, &v); err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*dst = v
		return nil
	}
}
