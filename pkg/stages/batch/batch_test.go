package batch

import (
	"context"
	"errors"
	"image"
	"sort"
	"sync"
	"testing"

	"github.com/user/dpframe/pkg/adapters/logger"
	"github.com/user/dpframe/pkg/compositor"
	"github.com/user/dpframe/pkg/mocks"
	"github.com/user/dpframe/pkg/pipeline"
	"github.com/user/dpframe/pkg/stages/layout"
)

type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) save() pipeline.StageFunc[pipeline.SaveInput, pipeline.SaveResult] {
	return func(ctx context.Context, in pipeline.SaveInput) (pipeline.SaveResult, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.names = append(r.names, in.Name)
		return pipeline.SaveResult{Path: in.Dir + "/" + in.Name + ".png", Bytes: len(in.Data)}, nil
	}
}

func noUpload() pipeline.StageFunc[pipeline.UploadInput, pipeline.UploadResult] {
	return func(ctx context.Context, in pipeline.UploadInput) (pipeline.UploadResult, error) {
		return pipeline.UploadResult{}, errors.New("unexpected upload")
	}
}

func newStage(t *testing.T, upload pipeline.Stage[pipeline.UploadInput, pipeline.UploadResult], rec *recorder, frames *mocks.FrameSource) *Stage {
	t.Helper()
	return NewStage(&mocks.Renderer{}, upload, rec.save(), mocks.NewDebugSink(false), logger.NewNoop(),
		compositor.Options{FrameSource: frames}, 3)
}

func testInput(jobs ...pipeline.BatchJob) pipeline.BatchInput {
	return pipeline.BatchInput{
		Layout:    layout.ComputeLayout(pipeline.DefaultLayoutInput()),
		Jobs:      jobs,
		Photo:     image.NewRGBA(image.Rect(0, 0, 50, 50)),
		Zoom:      1,
		OutputDir: "out",
	}
}

func TestStage_Execute(t *testing.T) {
	rec := &recorder{}
	stage := newStage(t, noUpload(), rec, &mocks.FrameSource{Data: []byte("frame")})

	input := testInput(
		pipeline.BatchJob{Name: "Ada Lovelace"},
		pipeline.BatchJob{Name: "Grace Hopper"},
		pipeline.BatchJob{Name: "  Alan <Turing> "},
		pipeline.BatchJob{Name: "Linus"},
		pipeline.BatchJob{Name: "Ken"},
	)
	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Failed != 0 {
		t.Errorf("expected no failures, got %d", result.Failed)
	}
	if len(result.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(result.Items))
	}
	// Items stay in job order.
	for i, it := range result.Items {
		if it.Index != i {
			t.Errorf("item %d has index %d", i, it.Index)
		}
		if it.FontSize <= 0 || it.Path == "" {
			t.Errorf("item %d incomplete: %+v", i, it)
		}
	}
	if result.Items[2].Name != "Alan Turing" {
		t.Errorf("expected sanitized name, got %q", result.Items[2].Name)
	}

	sort.Strings(rec.names)
	want := []string{"Ada Lovelace", "Alan Turing", "Grace Hopper", "Ken", "Linus"}
	for i := range want {
		if rec.names[i] != want[i] {
			t.Fatalf("saved names %v, want %v", rec.names, want)
		}
	}
}

func TestStage_Execute_Empty(t *testing.T) {
	stage := newStage(t, noUpload(), &recorder{}, &mocks.FrameSource{Data: []byte("frame")})

	result, err := stage.Execute(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("expected no items, got %d", len(result.Items))
	}
}

func TestStage_Execute_Duplicates(t *testing.T) {
	rec := &recorder{}
	stage := newStage(t, noUpload(), rec, &mocks.FrameSource{Data: []byte("frame")})

	result, err := stage.Execute(context.Background(), testInput(
		pipeline.BatchJob{Name: "Ada"},
		pipeline.BatchJob{Name: "ADA"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Failed != 1 || !errors.Is(result.Items[1].Err, ErrDuplicateName) {
		t.Errorf("expected second job to be a duplicate, got %+v", result.Items)
	}
	if len(rec.names) != 1 {
		t.Errorf("expected one save, got %v", rec.names)
	}
}

func TestStage_Execute_UnsluggableNamesNumbered(t *testing.T) {
	rec := &recorder{}
	stage := newStage(t, noUpload(), rec, &mocks.FrameSource{Data: []byte("frame")})

	result, err := stage.Execute(context.Background(), testInput(
		pipeline.BatchJob{Name: "山田"},
		pipeline.BatchJob{Name: "佐藤"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Failed != 0 {
		t.Fatalf("unexpected failures: %+v", result.Items)
	}
	sort.Strings(rec.names)
	if rec.names[0] != "001" || rec.names[1] != "002" {
		t.Errorf("expected numbered file names, got %v", rec.names)
	}
	if result.Items[0].Name != "山田" {
		t.Errorf("label should keep the name, got %q", result.Items[0].Name)
	}
}

func TestStage_Execute_NumberedNameCollision(t *testing.T) {
	rec := &recorder{}
	stage := newStage(t, noUpload(), rec, &mocks.FrameSource{Data: []byte("frame")})

	result, err := stage.Execute(context.Background(), testInput(
		pipeline.BatchJob{Name: "山田"},
		pipeline.BatchJob{Name: "001"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Items[0].Err != nil {
		t.Errorf("first job failed: %v", result.Items[0].Err)
	}
	if !errors.Is(result.Items[1].Err, ErrDuplicateName) {
		t.Errorf("expected a literal \"001\" to collide with the numbered name, got %v", result.Items[1].Err)
	}
	if len(rec.names) != 1 || rec.names[0] != "001" {
		t.Errorf("expected a single save as 001, got %v", rec.names)
	}
}

func TestFileNames(t *testing.T) {
	names, dup := fileNames([]pipeline.BatchJob{
		{Name: "Ada"},
		{Name: "<>"},
		{Name: "ada!"},
		{Name: "002"},
	})

	want := []string{"Ada", "002", "ada!", "002"}
	wantDup := []bool{false, false, true, true}
	for i := range want {
		if names[i] != want[i] || dup[i] != wantDup[i] {
			t.Errorf("job %d: got (%q, %v), want (%q, %v)", i, names[i], dup[i], want[i], wantDup[i])
		}
	}
}

func TestStage_Execute_PerJobPhoto(t *testing.T) {
	var mu sync.Mutex
	var uploaded []string
	upload := pipeline.StageFunc[pipeline.UploadInput, pipeline.UploadResult](
		func(ctx context.Context, in pipeline.UploadInput) (pipeline.UploadResult, error) {
			mu.Lock()
			uploaded = append(uploaded, in.Path)
			mu.Unlock()
			if in.Path == "bad.jpg" {
				return pipeline.UploadResult{}, errors.New("corrupt")
			}
			return pipeline.UploadResult{Image: image.NewRGBA(image.Rect(0, 0, 10, 10))}, nil
		})
	stage := newStage(t, upload, &recorder{}, &mocks.FrameSource{Data: []byte("frame")})

	input := testInput(
		pipeline.BatchJob{Name: "Ada", PhotoPath: "ada.jpg"},
		pipeline.BatchJob{Name: "Bob", PhotoPath: "bad.jpg"},
		pipeline.BatchJob{Name: "Cy"},
	)
	input.Photo = nil

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Failed != 2 {
		t.Errorf("expected 2 failures, got %d", result.Failed)
	}
	if result.Items[0].Err != nil {
		t.Errorf("job with a good photo failed: %v", result.Items[0].Err)
	}
	if result.Items[1].Err == nil {
		t.Error("expected upload failure for bad.jpg")
	}
	if !errors.Is(result.Items[2].Err, ErrNoPhoto) {
		t.Errorf("expected ErrNoPhoto, got %v", result.Items[2].Err)
	}
	if len(uploaded) != 2 {
		t.Errorf("expected 2 uploads, got %v", uploaded)
	}
}

func TestStage_Execute_FrameFailure(t *testing.T) {
	frames := &mocks.FrameSource{FetchFunc: func(ctx context.Context) ([]byte, error) {
		return nil, errors.New("404")
	}}
	stage := NewStage(&mocks.Renderer{}, noUpload(), (&recorder{}).save(), mocks.NewDebugSink(false), logger.NewNoop(),
		compositor.Options{
			FrameSource: frames,
			Retry:       compositor.RetryPolicy{MaxAttempts: 1},
		}, 2)

	result, err := stage.Execute(context.Background(), testInput(pipeline.BatchJob{Name: "Ada"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var fle *compositor.FrameLoadError
	if !errors.As(result.Items[0].Err, &fle) {
		t.Errorf("expected FrameLoadError, got %v", result.Items[0].Err)
	}
}

func TestStage_Execute_Cancelled(t *testing.T) {
	stage := newStage(t, noUpload(), &recorder{}, &mocks.FrameSource{Data: []byte("frame")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stage.Execute(ctx, testInput(pipeline.BatchJob{Name: "Ada"}))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
