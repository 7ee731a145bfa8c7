// Package batch implements the batch stage: one DP per name, rendered by
// a pool of workers that each own their compositor.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/user/dpframe/pkg/compositor"
	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/ports"
	"github.com/user/dpframe/pkg/stages/save"
)

var (
	// ErrNoPhoto is returned for a job with neither its own nor a shared photo.
	ErrNoPhoto = errors.New("batch: no photo for job")

	// ErrDuplicateName is returned for a job whose name repeats an earlier one,
	// since both would be saved under the same file name.
	ErrDuplicateName = errors.New("batch: duplicate name")
)

// Stage renders batch jobs concurrently.
type Stage struct {
	renderer   ports.Renderer
	upload     pipeline.Stage[pipeline.UploadInput, pipeline.UploadResult]
	save       pipeline.Stage[pipeline.SaveInput, pipeline.SaveResult]
	sink       ports.DebugSink
	logger     ports.Logger
	opts       compositor.Options
	numWorkers int
}

// NewStage creates a new batch stage. opts is the template for every
// job's compositor; its FrameSource should be shared and cached.
func NewStage(
	renderer ports.Renderer,
	upload pipeline.Stage[pipeline.UploadInput, pipeline.UploadResult],
	save pipeline.Stage[pipeline.SaveInput, pipeline.SaveResult],
	sink ports.DebugSink,
	logger ports.Logger,
	opts compositor.Options,
	numWorkers int,
) *Stage {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	logger = logger.WithComponent("batch")
	opts.Logger = logger
	return &Stage{
		renderer:   renderer,
		upload:     upload,
		save:       save,
		sink:       sink,
		logger:     logger,
		opts:       opts,
		numWorkers: numWorkers,
	}
}

// Execute renders every job. Failed jobs are reported per item; the
// returned error is non-nil only when ctx ends early.
func (s *Stage) Execute(ctx context.Context, input pipeline.BatchInput) (pipeline.BatchResult, error) {
	if len(input.Jobs) == 0 {
		return pipeline.BatchResult{Items: []pipeline.BatchItem{}}, nil
	}

	workers := s.numWorkers
	if workers > len(input.Jobs) {
		workers = len(input.Jobs)
	}
	s.logger.Info("Rendering %d images with %d workers", len(input.Jobs), workers)

	items := make([]pipeline.BatchItem, len(input.Jobs))
	names, dup := fileNames(input.Jobs)

	jobs := make(chan int, len(input.Jobs))
	for i := range input.Jobs {
		if dup[i] {
			items[i] = pipeline.BatchItem{Index: i, Name: input.Jobs[i].Name, Err: ErrDuplicateName}
			continue
		}
		jobs <- i
	}
	close(jobs)

	// Start workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go s.worker(ctx, &wg, input, names, jobs, items)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return pipeline.BatchResult{}, err
	}

	result := pipeline.BatchResult{Items: items}
	for _, it := range items {
		if it.Err != nil {
			result.Failed++
			s.logger.Warn("Image %d (%q) failed: %v", it.Index+1, it.Name, it.Err)
		}
	}
	s.logger.Info("Batch completed: %d of %d images written", len(items)-result.Failed, len(items))
	return result, nil
}

// worker renders jobs from the channel. Each index is written by exactly
// one worker, so items needs no lock.
func (s *Stage) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	input pipeline.BatchInput,
	names []string,
	jobs <-chan int,
	items []pipeline.BatchItem,
) {
	defer wg.Done()

	for idx := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		items[idx] = s.renderOne(ctx, input, idx, names[idx])
	}
}

// renderOne composes, exports and saves a single job.
func (s *Stage) renderOne(ctx context.Context, input pipeline.BatchInput, idx int, fileName string) pipeline.BatchItem {
	job := input.Jobs[idx]
	item := pipeline.BatchItem{Index: idx, Name: job.Name}
	fail := func(err error) pipeline.BatchItem {
		item.Err = err
		return item
	}

	comp, err := compositor.New(s.renderer, input.Layout, s.opts)
	if err != nil {
		return fail(err)
	}
	defer comp.Close()

	if err := comp.LoadFrame(ctx); err != nil {
		return fail(fmt.Errorf("frame: %w", err))
	}

	photo := input.Photo
	if job.PhotoPath != "" {
		res, err := s.upload.Execute(ctx, pipeline.UploadInput{Path: job.PhotoPath})
		if err != nil {
			return fail(fmt.Errorf("photo: %w", err))
		}
		photo = res.Image
	}
	if photo == nil {
		return fail(ErrNoPhoto)
	}

	comp.SetUserImage(photo)
	comp.ApplyAdjustments(compositor.Adjustments{
		Name:    job.Name,
		Zoom:    input.Zoom,
		OffsetX: input.OffsetX,
		OffsetY: input.OffsetY,
	})
	item.Name = comp.Name()

	data, err := comp.Export(ctx, input.Format, input.Quality)
	if err != nil {
		return fail(err)
	}

	saved, err := s.save.Execute(ctx, pipeline.SaveInput{
		Data:   data,
		Format: input.Format,
		Name:   fileName,
		Dir:    input.OutputDir,
	})
	if err != nil {
		return fail(fmt.Errorf("save: %w", err))
	}

	if s.sink.Enabled() {
		if err := s.sink.SaveRender(fmt.Sprintf("batch-%03d", idx+1), comp.Image()); err != nil {
			s.logger.Warn("Failed to save debug render: %s", err)
		}
	}

	fit := comp.LastFit()
	item.Path = saved.Path
	item.Bytes = saved.Bytes
	item.FontSize = fit.FontSize
	item.Overflow = fit.Overflow
	return item
}

// fileNames picks the name each job is saved under and marks jobs whose
// slug was already taken. Names without a usable slug would get
// time-based file names that collide between workers, so they are
// numbered by position and take part in the same check.
func fileNames(jobs []pipeline.BatchJob) ([]string, []bool) {
	names := make([]string, len(jobs))
	dup := make([]bool, len(jobs))
	seen := make(map[string]bool, len(jobs))
	for i, j := range jobs {
		name := compositor.SanitizeName(j.Name)
		if save.Slug(name) == "" {
			name = fmt.Sprintf("%03d", i+1)
		}
		names[i] = name
		key := save.Slug(name)
		if seen[key] {
			dup[i] = true
		}
		seen[key] = true
	}
	return names, dup
}
