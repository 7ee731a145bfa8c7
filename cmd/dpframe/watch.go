package main

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/dpframe/pkg/adapters/fswatcher"
	"github.com/user/dpframe/pkg/controller"
	"github.com/user/dpframe/pkg/orchestrator"
	"github.com/user/dpframe/pkg/pipeline"
)

// watchThrottle coalesces the setter calls of one file change into a
// single render.
const watchThrottle = 50 * time.Millisecond

// runWatch executes the watch command.
func runWatch(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New(l10n.T("An adjustment file argument is required"))
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}

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

	cfg := buildConfig(c, fc)
	cfg.RenderThrottle = watchThrottle
	orchConfig := cfg.ToOrchestratorConfig(fc.Photo, stringOpt(c, "output", fc.Output), stringOpt(c, "output-dir", fc.OutputDir))

	session, err := e.orch.Prepare(ctx, orchConfig)
	if err != nil {
		return err
	}
	defer session.Compositor.Close()

	ctrl := controller.New(session.Compositor, e.fs, trackUploads(session, e.upload), e.log)

	apply := func(ctx context.Context, _ []string) error {
		if err := ctrl.ApplyFile(ctx, path); err != nil {
			return err
		}
		result, err := session.Generate(ctx)
		if errors.Is(err, orchestrator.ErrIncomplete) {
			e.log.Warn("Waiting for both a photo and the frame before exporting")
			return nil
		}
		if err != nil {
			return err
		}
		e.log.Info("Output saved to %s", result.OutputPath)
		return nil
	}

	if ok, _ := e.fs.Exists(path); ok {
		if err := apply(ctx, nil); err != nil {
			e.log.Error("Applying changes failed: %v", err)
		}
	}

	w := fswatcher.New([]string{path}, apply, e.log)
	e.log.Info("Watching %s for changes, press Ctrl+C to stop", path)
	return w.Start(ctx)
}

// trackUploads records each decoded photo on the session so the run
// result describes the photo currently shown.
func trackUploads(s *orchestrator.Session, stage pipeline.Stage[pipeline.UploadInput, pipeline.UploadResult]) pipeline.Stage[pipeline.UploadInput, pipeline.UploadResult] {
	return pipeline.StageFunc[pipeline.UploadInput, pipeline.UploadResult](
		func(ctx context.Context, in pipeline.UploadInput) (pipeline.UploadResult, error) {
			res, err := stage.Execute(ctx, in)
			if err == nil {
				s.Photo = &res
				s.PhotoPath = in.Path
			}
			return res, err
		})
}
