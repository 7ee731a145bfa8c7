// Package main provides the CLI entry point for dpframe.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/dpframe/pkg/adapters/filesink"
	"github.com/user/dpframe/pkg/adapters/filestore"
	"github.com/user/dpframe/pkg/adapters/framesource"
	"github.com/user/dpframe/pkg/adapters/ggrenderer"
	"github.com/user/dpframe/pkg/adapters/logger"
	"github.com/user/dpframe/pkg/adapters/nullsink"
	"github.com/user/dpframe/pkg/adapters/osfilesystem"
	"github.com/user/dpframe/pkg/config"
	"github.com/user/dpframe/pkg/dpframe"
	"github.com/user/dpframe/pkg/orchestrator"
	"github.com/user/dpframe/pkg/ports"
	"github.com/user/dpframe/pkg/stages/layout"
	"github.com/user/dpframe/pkg/stages/save"
	"github.com/user/dpframe/pkg/stages/upload"
	"github.com/user/dpframe/pkg/summarizer"
)

var version = "dev"

// Flag categories
const (
	catInput       = "Input"
	catComposition = "Composition"
	catSurface     = "Surface and Template"
	catOutput      = "Output"
	catState       = "State"
	catDebug       = "Debug"
	catLogging     = "Logging"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 "dpframe",
		Usage:                l10n.T("Compose profile pictures with a decorative frame"),
		Description:          l10n.T("dpframe clips a photo into a circle, lays a frame over it and writes the name below."),
		Version:              version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:        "generate",
				Aliases:     []string{"gen"},
				Usage:       l10n.T("Generate a framed profile picture"),
				Description: l10n.T("Compose the photo, frame and name once and save the image."),
				ArgsUsage:   "<photo>",
				Flags:       append(commonFlags(), generateFlags()...),
				Action:      runGenerate,
			},
			{
				Name:        "watch",
				Usage:       l10n.T("Regenerate whenever an adjustment file changes"),
				Description: l10n.T("Watch a YAML adjustment file and regenerate the image on every change."),
				ArgsUsage:   "<adjustments.yaml>",
				Flags:       commonFlags(),
				Action:      runWatch,
			},
			{
				Name:        "batch",
				Usage:       l10n.T("Generate one picture per name from a CSV file"),
				Description: l10n.T("Read name[,photo] rows and render them concurrently with a shared frame."),
				ArgsUsage:   "<names.csv>",
				Flags:       append(commonFlags(), batchFlags()...),
				Action:      runBatch,
			},
			{
				Name:        "reset",
				Usage:       l10n.T("Clear the saved adjustments"),
				Description: l10n.T("Remove the adjustment record restored on the next run."),
				Flags:       append(stateFlags(), loggingFlags()...),
				Action:      runReset,
			},
			{
				Name:        "version",
				Usage:       l10n.T("Show version information"),
				Description: l10n.T("Display the version of dpframe."),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("dpframe version %s", version))
					return nil
				},
			},
		},
	}
}

func commonFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T(catInput)},
		&cli.StringFlag{Name: "frame", Aliases: []string{"f"}, Usage: l10n.T("Frame image path or http(s) URL"), Category: l10n.T(catInput)},
		&cli.IntFlag{Name: "frame-attempts", Usage: l10n.T("Frame load attempts (default: 3)"), Category: l10n.T(catInput)},
		&cli.DurationFlag{Name: "frame-retry-delay", Usage: l10n.T("Delay between frame load attempts (default: 1s)"), Category: l10n.T(catInput)},
		&cli.IntFlag{Name: "max-upload-mb", Usage: l10n.T("Largest accepted photo in MB (default: 5)"), Category: l10n.T(catInput)},

		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: l10n.T("Name shown under the photo (max 25 characters)"), Category: l10n.T(catComposition)},
		&cli.Float64Flag{Name: "zoom", Aliases: []string{"z"}, Usage: l10n.T("Photo zoom (0.5 to 2)"), Category: l10n.T(catComposition)},
		&cli.Float64Flag{Name: "offset-x", Usage: l10n.T("Horizontal photo offset (-100 to 100)"), Category: l10n.T(catComposition)},
		&cli.Float64Flag{Name: "offset-y", Usage: l10n.T("Vertical photo offset (-100 to 100)"), Category: l10n.T(catComposition)},

		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: l10n.T("Surface preset (square, portrait)"), Category: l10n.T(catSurface)},
		&cli.Float64Flag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Logical surface width (default: 1080)"), Category: l10n.T(catSurface)},
		&cli.Float64Flag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Logical surface height (default: 1080)"), Category: l10n.T(catSurface)},
		&cli.Float64Flag{Name: "scale", Aliases: []string{"s"}, Usage: l10n.T("Device pixel ratio (default: 1)"), Category: l10n.T(catSurface)},
		&cli.StringFlag{Name: "background", Usage: l10n.T("Background color (hex, e.g., #ffffff)"), Category: l10n.T(catSurface)},
		&cli.Float64Flag{Name: "font-min", Usage: l10n.T("Smallest name font size (default: 30)"), Category: l10n.T(catSurface)},
		&cli.Float64Flag{Name: "font-max", Usage: l10n.T("Largest name font size (default: 60)"), Category: l10n.T(catSurface)},
		&cli.Float64Flag{Name: "name-padding", Usage: l10n.T("Horizontal padding inside the name box"), Category: l10n.T(catSurface)},

		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output file path (default: generated from the name)"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "output-dir", Usage: l10n.T("Directory for generated file names (default: .)"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "suffix", Usage: l10n.T("File name suffix (default: dp)"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "format", Usage: l10n.T("Output format (png, jpeg)"), Category: l10n.T(catOutput)},
		&cli.Float64Flag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("JPEG quality (0 to 1, overrides quality preset)"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "quality-preset", Usage: l10n.T("Quality preset (low, medium, high)"), Category: l10n.T(catOutput)},
		&cli.BoolFlag{Name: "allow-incomplete", Usage: l10n.T("Export even without a photo or frame"), Category: l10n.T(catOutput)},

		&cli.BoolFlag{Name: "no-restore", Usage: l10n.T("Do not restore saved adjustments"), Category: l10n.T(catState)},
		&cli.BoolFlag{Name: "no-save", Usage: l10n.T("Do not save adjustments after export"), Category: l10n.T(catState)},

		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T(catDebug)},
		&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output (default: ./debug)"), Category: l10n.T(catDebug)},
	}
	flags = append(flags, stateFlags()...)
	return append(flags, loggingFlags()...)
}

func generateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)"), Category: l10n.T(catOutput)},
	}
}

func stateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "state-dir", Usage: l10n.T("Directory holding the saved adjustments (default: .)"), Category: l10n.T(catState)},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T(catLogging)},
		&cli.StringFlag{Name: "log-file", Usage: l10n.T("Also write logs to a rotated file"), Category: l10n.T(catLogging)},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T(catLogging)},
	}
}

// env holds the adapters and stages shared by the commands.
type env struct {
	log      ports.Logger
	closeLog func()
	fs       ports.FileSystem
	renderer ports.Renderer
	frames   ports.FrameSource
	sink     ports.DebugSink
	upload   *upload.Stage
	save     *save.Stage
	orch     *orchestrator.Orchestrator
}

func (e *env) Close() { e.closeLog() }

func newEnv(c *cli.Context, fc config.Config) (*env, error) {
	log, closeLog := newLogger(c, fc)

	// Create adapters
	fs := osfilesystem.New()
	renderer := ggrenderer.New()
	store := filestore.New(stringOpt(c, "state-dir", fc.StateDir), fc.StateKey, fs)

	var frames ports.FrameSource
	if loc := stringOpt(c, "frame", fc.Frame); loc != "" {
		frames = framesource.New(loc, fs, nil)
	} else if !c.Bool("allow-incomplete") && !fc.AllowIncomplete {
		closeLog()
		return nil, errors.New(l10n.T("A frame is required (--frame or frame: in the config file)"))
	}

	// Create debug sink
	var sink ports.DebugSink
	if c.Bool("debug") || fc.Debug {
		dir := stringOpt(c, "debug-dir", fc.DebugDir)
		if err := fs.MkdirAll(dir); err != nil {
			closeLog()
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(dir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	maxMB := fc.MaxUploadMB
	if c.IsSet("max-upload-mb") {
		maxMB = c.Int("max-upload-mb")
	}

	// Create stages
	layoutStage := layout.NewStage()
	uploadStage := upload.NewStage(fs, renderer, log, upload.Options{
		MaxBytes:     int64(maxMB) << 20,
		MaxDimension: fc.MaxDimension,
	})
	saveStage := save.NewStage(fs, log, stringOpt(c, "suffix", fc.Suffix))

	orch := orchestrator.New(
		layoutStage,
		uploadStage,
		saveStage,
		renderer,
		frames,
		store,
		sink,
		log,
	)

	return &env{
		log:      log,
		closeLog: closeLog,
		fs:       fs,
		renderer: renderer,
		frames:   frames,
		sink:     sink,
		upload:   uploadStage,
		save:     saveStage,
		orch:     orch,
	}, nil
}

func newLogger(c *cli.Context, fc config.Config) (ports.Logger, func()) {
	level := ports.ParseLogLevel(stringOpt(c, "log-level", fc.LogLevel))

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(level)
	}

	path := stringOpt(c, "log-file", fc.LogFile)
	if path == "" {
		return log, func() {}
	}
	file := logger.NewFile(logger.FileConfig{Path: path}, level)
	return logger.Tee{log, file}, func() { file.Close() } //nolint:errcheck
}

func loadFileConfig(c *cli.Context) (config.Config, error) {
	if !c.IsSet("config") {
		return config.Defaults(), nil
	}
	fc, err := config.LoadFromFile(c.String("config"))
	if err != nil {
		return fc, fmt.Errorf("load config: %w", err)
	}
	return fc, nil
}

// buildConfig creates a Config from preset, config file and CLI overrides.
func buildConfig(c *cli.Context, fc config.Config) dpframe.Config {
	// Start with preset
	var builder *dpframe.ConfigBuilder
	switch c.String("preset") {
	case "portrait":
		builder = dpframe.NewPortraitConfigBuilder()
	default:
		builder = dpframe.NewConfigBuilder()
	}

	// Apply config file
	if c.IsSet("config") {
		builder.
			WithWidth(fc.Width).
			WithHeight(fc.Height).
			WithScale(fc.Scale).
			WithTemplate(fc.Template).
			WithBackgroundColor(config.ParseColor(fc.Background)).
			WithFrameRetry(fc.FrameAttempts, time.Duration(fc.FrameRetryDelayMs)*time.Millisecond).
			WithFormat(ports.ParseImageFormat(fc.Format)).
			WithQuality(fc.Quality).
			WithAllowIncomplete(fc.AllowIncomplete).
			WithState(fc.RestoreState, fc.SaveState)
		if fc.Name != nil {
			builder.WithName(*fc.Name)
		}
		if fc.Zoom != nil {
			builder.WithZoom(*fc.Zoom)
		}
		if fc.OffsetX != nil {
			builder.WithOffsetX(*fc.OffsetX)
		}
		if fc.OffsetY != nil {
			builder.WithOffsetY(*fc.OffsetY)
		}
	}

	// Apply overrides
	if c.IsSet("width") {
		builder.WithWidth(c.Float64("width"))
	}
	if c.IsSet("height") {
		builder.WithHeight(c.Float64("height"))
	}
	if c.IsSet("scale") {
		builder.WithScale(c.Float64("scale"))
	}
	if c.IsSet("background") {
		builder.WithBackgroundColor(config.ParseColor(c.String("background")))
	}
	if c.IsSet("font-min") || c.IsSet("font-max") {
		cur := builder.Build().Template.FontSize
		lo, hi := cur.Min, cur.Max
		if c.IsSet("font-min") {
			lo = c.Float64("font-min")
		}
		if c.IsSet("font-max") {
			hi = c.Float64("font-max")
		}
		builder.WithFontRange(lo, hi)
	}
	if c.IsSet("name-padding") {
		builder.WithNamePadding(c.Float64("name-padding"))
	}
	if c.IsSet("name") {
		builder.WithName(c.String("name"))
	}
	if c.IsSet("zoom") {
		builder.WithZoom(c.Float64("zoom"))
	}
	if c.IsSet("offset-x") {
		builder.WithOffsetX(c.Float64("offset-x"))
	}
	if c.IsSet("offset-y") {
		builder.WithOffsetY(c.Float64("offset-y"))
	}
	if c.IsSet("frame-attempts") || c.IsSet("frame-retry-delay") {
		cur := builder.Build()
		attempts, delay := cur.FrameAttempts, cur.FrameRetryDelay
		if c.IsSet("frame-attempts") {
			attempts = c.Int("frame-attempts")
		}
		if c.IsSet("frame-retry-delay") {
			delay = c.Duration("frame-retry-delay")
		}
		builder.WithFrameRetry(attempts, delay)
	}
	if c.IsSet("format") {
		builder.WithFormat(ports.ParseImageFormat(c.String("format")))
	}
	if c.IsSet("quality-preset") {
		builder.WithQualityPreset(dpframe.QualityPreset(c.String("quality-preset")))
	}
	if c.IsSet("quality") {
		builder.WithQuality(c.Float64("quality"))
	}
	if c.Bool("allow-incomplete") {
		builder.WithAllowIncomplete(true)
	}
	if c.Bool("no-restore") || c.Bool("no-save") {
		cur := builder.Build()
		builder.WithState(cur.RestoreState && !c.Bool("no-restore"), cur.SaveState && !c.Bool("no-save"))
	}

	return builder.Build()
}

func stringOpt(c *cli.Context, name, fallback string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	return fallback
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// runGenerate executes the generate command.
func runGenerate(c *cli.Context) error {
	fc, err := loadFileConfig(c)
	if err != nil {
		return err
	}
	e, err := newEnv(c, fc)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := signalContext(e.log)
	defer cancel()

	photo := c.Args().First()
	if photo == "" {
		photo = fc.Photo
	}

	cfg := buildConfig(c, fc)
	orchConfig := cfg.ToOrchestratorConfig(photo, stringOpt(c, "output", fc.Output), stringOpt(c, "output-dir", fc.OutputDir))

	result, err := e.orch.Run(ctx, orchConfig)
	if err != nil {
		return err
	}

	if path := c.String("summary"); path != "" {
		w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		), e.fs)
		if err := w.Write(path, buildSummary(result)); err != nil {
			e.log.Warn("Failed to write summary: %s", err)
		} else {
			e.log.Info("Summary saved to %s", path)
		}
	}

	return nil
}

// runReset executes the reset command.
func runReset(c *cli.Context) error {
	fc, err := loadFileConfig(c)
	if err != nil {
		return err
	}
	log, closeLog := newLogger(c, fc)
	defer closeLog()

	store := filestore.New(stringOpt(c, "state-dir", fc.StateDir), fc.StateKey, osfilesystem.New())
	if err := store.Clear(c.Context); err != nil {
		return err
	}
	log.Info("Saved adjustments cleared: %s", store.Path())
	return nil
}

func buildSummary(r orchestrator.RunResult) *summarizer.Summary {
	pw, ph := r.PhysicalSize()
	return summarizer.NewBuilder().
		WithSession(r.SessionID).
		WithPhoto(summarizer.PhotoInfo{
			Path:    r.PhotoPath,
			Format:  r.PhotoFormat,
			Width:   r.PhotoWidth,
			Height:  r.PhotoHeight,
			Resized: r.PhotoResized,
		}).
		WithFrame(r.FrameLocation, r.FrameStatus, r.FrameAttempts).
		WithComposition(summarizer.CompositionInfo{
			Name:         r.Name,
			FontSize:     r.FontSize,
			NameOverflow: r.NameOverflow,
			Zoom:         r.Zoom,
			OffsetX:      r.OffsetX,
			OffsetY:      r.OffsetY,
			Restored:     r.Restored,
		}).
		WithOutput(summarizer.OutputInfo{
			Path:         r.OutputPath,
			Format:       r.Format,
			FileSize:     r.FileSize,
			CanvasWidth:  r.CanvasWidth,
			CanvasHeight: r.CanvasHeight,
			Scale:        r.Scale,
			PixelWidth:   pw,
			PixelHeight:  ph,
		}).
		WithDuration(r.Duration).
		Build()
}
