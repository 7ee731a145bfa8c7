package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/dpframe/pkg/adapters/framesource"
	"github.com/user/dpframe/pkg/compositor"
	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/stages/batch"
	"github.com/user/dpframe/pkg/stages/layout"
)

func batchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "photo", Usage: l10n.T("Photo used for rows without their own"), Category: l10n.T(catInput)},
		&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: l10n.T("Number of parallel workers (default: CPU count)"), Category: l10n.T(catOutput)},
	}
}

// readJobs parses name[,photo] rows. Blank rows, rows starting with '#'
// and a leading "name" header are skipped. Photo paths are relative to
// the CSV file.
func readJobs(r io.Reader, baseDir string) ([]pipeline.BatchJob, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var jobs []pipeline.BatchJob
	for line := 0; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read names: %w", err)
		}
		name := strings.TrimSpace(rec[0])
		if line == 0 && strings.EqualFold(name, "name") {
			continue
		}
		if name == "" {
			continue
		}
		job := pipeline.BatchJob{Name: name}
		if len(rec) > 1 {
			if p := strings.TrimSpace(rec[1]); p != "" {
				if !filepath.IsAbs(p) {
					p = filepath.Join(baseDir, p)
				}
				job.PhotoPath = p
			}
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// runBatch executes the batch command.
func runBatch(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New(l10n.T("A names file is required"))
	}

	fc, err := loadFileConfig(c)
	if err != nil {
		return err
	}
	if !c.IsSet("frame") && fc.Frame == "" {
		return errors.New(l10n.T("A frame is required (--frame or frame: in the config file)"))
	}
	e, err := newEnv(c, fc)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := signalContext(e.log)
	defer cancel()

	data, err := e.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read names: %w", err)
	}
	jobs, err := readJobs(bytes.NewReader(data), filepath.Dir(path))
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return errors.New(l10n.T("The names file has no rows"))
	}

	cfg := buildConfig(c, fc)
	l, err := layout.NewStage().Execute(ctx, pipeline.LayoutInput{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Template: cfg.Template,
	})
	if err != nil {
		return fmt.Errorf("layout stage: %w", err)
	}

	input := pipeline.BatchInput{
		Layout:    l,
		Jobs:      jobs,
		Zoom:      1,
		Format:    cfg.Format,
		Quality:   cfg.Quality,
		OutputDir: stringOpt(c, "output-dir", fc.OutputDir),
	}
	if cfg.Zoom != nil {
		input.Zoom = *cfg.Zoom
	}
	if cfg.OffsetX != nil {
		input.OffsetX = *cfg.OffsetX
	}
	if cfg.OffsetY != nil {
		input.OffsetY = *cfg.OffsetY
	}
	if shared := stringOpt(c, "photo", fc.Photo); shared != "" {
		res, err := e.upload.Execute(ctx, pipeline.UploadInput{Path: shared})
		if err != nil {
			return fmt.Errorf("photo: %w", err)
		}
		input.Photo = res.Image
	}

	delay := cfg.FrameRetryDelay
	if delay <= 0 {
		delay = compositor.NoRetryDelay
	}
	stage := batch.NewStage(e.renderer, e.upload, e.save, e.sink, e.log, compositor.Options{
		Scale:       cfg.Scale,
		Background:  cfg.Background,
		FrameSource: framesource.NewCached(e.frames),
		Retry: compositor.RetryPolicy{
			MaxAttempts: cfg.FrameAttempts,
			Delay:       delay,
		},
	}, c.Int("workers"))

	start := time.Now()
	result, err := stage.Execute(ctx, input)
	if err != nil {
		return err
	}
	for _, it := range result.Items {
		if it.Err == nil {
			fmt.Fprintln(c.App.Writer, it.Path)
		}
	}
	e.log.Debug("Batch took %s", time.Since(start).Round(time.Millisecond))

	if result.Failed > 0 {
		return errors.New(l10n.F("%d of %d images failed", result.Failed, len(result.Items)))
	}
	return nil
}
