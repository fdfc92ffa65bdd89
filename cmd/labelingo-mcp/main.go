package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/labelingo/internal/backend/registry"
	"github.com/ironsheep/labelingo/internal/config"
	"github.com/ironsheep/labelingo/internal/export"
	"github.com/ironsheep/labelingo/internal/imaging"
	"github.com/ironsheep/labelingo/internal/logging"
	"github.com/ironsheep/labelingo/internal/ocr"
	"github.com/ironsheep/labelingo/internal/pipeline"
	"github.com/ironsheep/labelingo/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("labelingo-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("labelingo-mcp - MCP server for screenshot annotation")
			fmt.Println()
			fmt.Println("Usage: labelingo-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  LABELINGO_CONFIG=path        YAML configuration file")
			fmt.Println("  LABELINGO_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println("  LABELINGO_LOG_FILE=path      Also log to a rotated file")
			fmt.Println("  OPENAI_API_KEY, GEMINI_API_KEY, ANTHROPIC_API_KEY")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "labelingo-mcp: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout is for the MCP protocol.
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Output: os.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "labelingo-mcp: %v\n", err)
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("starting labelingo MCP server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &pipeline.Pipeline{
		Layout:      cfg.Layout,
		Render:      cfg.Render,
		MaxWidth:    cfg.MaxWidth,
		MaxHeight:   cfg.MaxHeight,
		Concurrency: cfg.Concurrency,
		Images:      imaging.NewImageCache(),
		Logger:      log,
	}

	// Layout and local detection work without hosted backends, so a missing API key
	// only disables screenshot_annotate.
	backends, err := registry.Build(ctx, cfg, false, log)
	if err != nil {
		log.WithError(err).Warn("translation backend unavailable; screenshot_annotate is disabled")
	} else {
		defer backends.Close()
		p.Detector = backends.Detector
		p.Translator = backends.Translator
	}

	srv := server.New(
		server.WithPipeline(p),
		server.WithDetector(ocr.New(ocr.Options{})),
		server.WithExporter(&export.Exporter{Region: cfg.AWSRegion, Logger: log}),
		server.WithDefaults(cfg.Language, cfg.Format),
		server.WithLogger(log),
	)
	server.Version = Version

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Error("server error")
		stop()
		os.Exit(1)
	}
}
