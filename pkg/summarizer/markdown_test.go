package summarizer

import (
	"strings"
	"testing"
	"time"

	"github.com/user/dpframe/pkg/mocks"
)

func testSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		SessionID:   "3f1c",
		Photo: PhotoInfo{
			Path:    "me.jpg",
			Format:  "jpeg",
			Width:   5000,
			Height:  4000,
			Resized: true,
		},
		Frame: FrameInfo{
			Location: "https://example.com/frame.png",
			Status:   "loaded",
			Attempts: 2,
		},
		Composition: CompositionInfo{
			Name:     "Ada Lovelace",
			FontSize: 54,
			Zoom:     1.25,
			OffsetX:  -10,
			OffsetY:  20,
		},
		Output: OutputInfo{
			Path:         "ada-lovelace-dp.png",
			Format:       "png",
			FileSize:     1024 * 1024,
			CanvasWidth:  1080,
			CanvasHeight: 1080,
			Scale:        2,
			PixelWidth:   2160,
			PixelHeight:  2160,
		},
		Timing: TimingInfo{TotalDurationMs: 1234},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(testSummary())

	checks := []string{
		"# DP Summary",
		"2024-01-15 10:30:00 UTC",
		"`3f1c`",
		"ada-lovelace-dp.png",
		"PNG",
		"1.00 MB",
		"1080x1080",
		"2x",
		"2160x2160",
		"Ada Lovelace",
		"54 px",
		"1.25",
		"-10, +20",
		"me.jpg (jpeg, 5000x4000) downscaled",
		"https://example.com/frame.png (loaded, 2 attempt(s))",
		"1234 ms",
	}

	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q\n%s", check, result)
		}
	}
	if strings.Contains(result, "Restored") {
		t.Error("Restored row should be omitted when nothing was restored")
	}
	if strings.Contains(result, "overflows") {
		t.Error("overflow marker should be omitted")
	}
}

func TestMarkdownFormatter_Format_Overflow(t *testing.T) {
	s := testSummary()
	s.Composition.NameOverflow = true
	s.Composition.Restored = true

	result := NewMarkdownFormatter().Format(s)

	if !strings.Contains(result, "Ada Lovelace (overflows)") {
		t.Error("expected overflow marker")
	}
	if !strings.Contains(result, "| Restored | Yes |") {
		t.Error("expected Restored row")
	}
}

func TestMarkdownFormatter_Format_NoPhoto(t *testing.T) {
	s := testSummary()
	s.Photo = PhotoInfo{}
	s.Composition.Name = ""
	s.Timing = TimingInfo{}

	result := NewMarkdownFormatter().Format(s)

	if !strings.Contains(result, "| Photo | None |") {
		t.Error("expected 'None' for a missing photo")
	}
	if !strings.Contains(result, "| Name | - |") {
		t.Error("expected '-' for an empty name")
	}
	if strings.Contains(result, "Duration") {
		t.Error("duration should be omitted when zero")
	}
}

func TestMarkdownFormatter_EscapesPipes(t *testing.T) {
	s := testSummary()
	s.Composition.Name = "A|B"

	result := NewMarkdownFormatter().Format(s)

	if !strings.Contains(result, `A\|B`) {
		t.Error("expected pipe to be escaped")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"DP Summary": "DPサマリー",
			"Name":       "名前",
			"loaded":     "読み込み済み",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	formatter := NewMarkdownFormatter(WithTranslator(translator))
	result := formatter.Format(testSummary())

	for _, want := range []string{"DPサマリー", "| 名前 |", "読み込み済み"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	formatter := NewMarkdownFormatter(WithVersion("v1.2.0"))

	result := formatter.Format(testSummary())

	if !strings.Contains(result, "v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(s *Summary) string { return "report " + s.SessionID }), fs)

	if err := w.Write("reports/run.md", &Summary{SessionID: "x"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, ok := fs.GetFile("reports/run.md")
	if !ok || string(data) != "report x" {
		t.Errorf("unexpected file content %q", data)
	}
	if ok, _ := fs.Exists("reports"); !ok {
		t.Error("expected parent directory to be created")
	}
}
