package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/labelingo/internal/backend"
	"github.com/ironsheep/labelingo/internal/backend/registry"
	"github.com/ironsheep/labelingo/internal/config"
	"github.com/ironsheep/labelingo/internal/export"
	"github.com/ironsheep/labelingo/internal/imaging"
	"github.com/ironsheep/labelingo/internal/logging"
	"github.com/ironsheep/labelingo/internal/pipeline"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// errUsage marks command-line mistakes, reported with exit status 2.
var errUsage = errors.New("usage error")

type options struct {
	output         string
	language       string
	sourceLanguage string
	format         string
	detector       string
	translator     string
	title          string
	configPath     string
	noCache        bool
	preview        bool
	open           bool
	debug          bool
	version        bool
	images         []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("labelingo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.output, "o", "", "output file or s3://bucket/key (single image only)")
	fs.StringVar(&o.output, "output", "", "output file or s3://bucket/key (single image only)")
	fs.StringVar(&o.language, "l", "", "target language for the labels (ISO 639-1)")
	fs.StringVar(&o.language, "language", "", "target language for the labels (ISO 639-1)")
	fs.StringVar(&o.sourceLanguage, "s", "", "language of the screenshot, if known")
	fs.StringVar(&o.sourceLanguage, "source-language", "", "language of the screenshot, if known")
	fs.StringVar(&o.format, "format", "", "output format: svg, png or pdf")
	fs.StringVar(&o.detector, "backend", "", "text detector: tesseract, claude, gemini or none")
	fs.StringVar(&o.translator, "translator", "", "translation backend: openai, gemini or claude")
	fs.StringVar(&o.title, "title", "", "title drawn under the screenshot")
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file")
	fs.BoolVar(&o.noCache, "no-cache", false, "do not read or write the response cache")
	fs.BoolVar(&o.preview, "preview", false, "open each document in the web browser")
	fs.BoolVar(&o.open, "open", false, "open each document with the system default application")
	fs.BoolVar(&o.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&o.version, "version", false, "print version information")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "labelingo - annotate screenshots with numbered, translated labels")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage: labelingo [options] IMAGE...")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "API keys are read from OPENAI_API_KEY, GEMINI_API_KEY and ANTHROPIC_API_KEY,")
		fmt.Fprintln(stderr, "or from a .env file in the working directory.")
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	o.images = fs.Args()

	if o.version {
		return &o, nil
	}
	if len(o.images) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("%w: no images given", errUsage)
	}
	if o.output != "" && len(o.images) > 1 {
		return nil, fmt.Errorf("%w: --output can only be used with a single image", errUsage)
	}
	return &o, nil
}

// apply overrides cfg with the flags that were set and validates the result.
func (o *options) apply(cfg *config.Config) error {
	if o.language != "" {
		cfg.Language = o.language
	}
	if o.sourceLanguage != "" {
		cfg.SourceLanguage = o.sourceLanguage
	}
	if o.format != "" {
		cfg.Format = strings.ToLower(o.format)
	}
	if o.detector != "" {
		cfg.DetectBackend = strings.ToLower(o.detector)
	}
	if o.translator != "" {
		cfg.TranslateBackend = strings.ToLower(o.translator)
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}
	if opts.version {
		fmt.Fprintf(stdout, "labelingo %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := annotate(ctx, opts, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "labelingo: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func annotate(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Output: stderr})
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"version": Version, "commit": GitCommit}).Debug("starting labelingo")

	backends, err := registry.Build(ctx, cfg, opts.noCache, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.WithError(err).Warn("failed to close backends")
		}
	}()

	p := &pipeline.Pipeline{
		Detector:    backends.Detector,
		Translator:  backends.Translator,
		Layout:      cfg.Layout,
		Render:      cfg.Render,
		MaxWidth:    cfg.MaxWidth,
		MaxHeight:   cfg.MaxHeight,
		Concurrency: cfg.Concurrency,
		Images:      imaging.NewImageCache(),
		Logger:      log,
	}

	reqs := make([]pipeline.Request, len(opts.images))
	for i, path := range opts.images {
		reqs[i] = pipeline.Request{
			ImagePath:      path,
			TargetLanguage: cfg.Language,
			SourceLanguage: cfg.SourceLanguage,
			Title:          opts.title,
		}
	}

	results, err := p.RunBatch(ctx, reqs)
	if err != nil {
		if be, ok := backend.AsError(err); ok {
			log.WithFields(logrus.Fields{"backend": be.Backend, "op": be.Op}).Error("backend failed")
		}
		return err
	}

	// The opener's own output must not mix with the printed locations.
	browser.Stdout = stderr
	browser.Stderr = stderr

	exporter := &export.Exporter{Region: cfg.AWSRegion, Logger: log}
	for _, res := range results {
		dest := outputFor(opts.output, res.ImagePath, cfg.Format)
		location, err := exporter.Write(ctx, res.Document, dest, cfg.Format)
		if err != nil {
			return fmt.Errorf("%s: %w", res.ImagePath, err)
		}
		fmt.Fprintln(stdout, location)
		reveal(opts, location, log)
	}
	return nil
}

// Openers used by --preview and --open.
var (
	openInBrowser = browser.OpenURL
	openWithApp   = browser.OpenFile
)

// reveal shows a written document as --preview and --open ask. Failing to open it is
// logged, not returned: the document is already written.
func reveal(opts *options, location string, log logrus.FieldLogger) {
	if !opts.preview && !opts.open {
		return
	}
	if _, _, ok := export.ParseS3URL(location); ok {
		log.WithField("location", location).Warn("documents uploaded to S3 are not opened")
		return
	}
	path, err := filepath.Abs(location)
	if err != nil {
		path = location
	}

	if opts.preview {
		if err := openInBrowser("file://" + filepath.ToSlash(path)); err != nil {
			log.WithError(err).Warn("failed to open preview in browser")
		}
	}
	if opts.open {
		if err := openWithApp(path); err != nil {
			log.WithError(err).Warn("failed to open document")
		}
	}
}

// outputFor returns where the document for image goes.
func outputFor(output, image, format string) string {
	if output == "" {
		return export.DefaultOutput(image, format)
	}
	if _, _, ok := export.ParseS3URL(output); ok {
		return output
	}
	return export.NormalizeOutput(output, format)
}
