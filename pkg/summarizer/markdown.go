package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds a version footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("DP Summary"))
	fmt.Fprintf(&b, "%s: %s\n", t("Generated At"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if s.SessionID != "" {
		fmt.Fprintf(&b, "%s: `%s`\n", t("Session"), s.SessionID)
	}

	// Output
	fmt.Fprintf(&b, "\n## %s\n\n", t("Output"))
	f.table(&b,
		row{t("File"), dash(s.Output.Path)},
		row{t("Format"), dash(strings.ToUpper(s.Output.Format))},
		row{t("File Size"), formatBytes(s.Output.FileSize)},
		row{t("Canvas Size"), fmt.Sprintf("%.0fx%.0f", s.Output.CanvasWidth, s.Output.CanvasHeight)},
		row{t("Pixel Ratio"), fmt.Sprintf("%gx", s.Output.Scale)},
		row{t("Pixel Size"), fmt.Sprintf("%dx%d", s.Output.PixelWidth, s.Output.PixelHeight)},
	)

	// Composition
	c := s.Composition
	name := dash(c.Name)
	if c.NameOverflow {
		name += " (" + t("overflows") + ")"
	}
	fmt.Fprintf(&b, "\n## %s\n\n", t("Composition"))
	rows := []row{
		{t("Name"), name},
		{t("Font Size"), fmt.Sprintf("%.0f px", c.FontSize)},
		{t("Zoom"), fmt.Sprintf("%.2f", c.Zoom)},
		{t("Offset"), fmt.Sprintf("%+.0f, %+.0f", c.OffsetX, c.OffsetY)},
	}
	if c.Restored {
		rows = append(rows, row{t("Restored"), t("Yes")})
	}
	f.table(&b, rows...)

	// Inputs
	fmt.Fprintf(&b, "\n## %s\n\n", t("Inputs"))
	photo := t("None")
	if s.Photo.Format != "" {
		photo = fmt.Sprintf("%s (%s, %dx%d)", dash(s.Photo.Path), s.Photo.Format, s.Photo.Width, s.Photo.Height)
		if s.Photo.Resized {
			photo += " " + t("downscaled")
		}
	}
	frame := fmt.Sprintf("%s (%s, %d %s)", dash(s.Frame.Location), t(s.Frame.Status), s.Frame.Attempts, t("attempt(s)"))
	f.table(&b,
		row{t("Photo"), photo},
		row{t("Frame"), frame},
	)

	if s.Timing.TotalDurationMs > 0 {
		fmt.Fprintf(&b, "\n%s: %d ms\n", t("Duration"), s.Timing.TotalDurationMs)
	}

	if f.version != "" {
		fmt.Fprintf(&b, "\n---\n\n%s\n", fmt.Sprintf(t("Generated by dpframe %s"), f.version))
	}

	return b.String()
}

type row struct {
	label string
	value string
}

func (f *MarkdownFormatter) table(b *strings.Builder, rows ...row) {
	fmt.Fprintf(b, "| %s | %s |\n", f.translate("Item"), f.translate("Value"))
	b.WriteString("|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r.label, escapePipes(r.value))
	}
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatBytes formats a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %s", float64(n)/float64(div), []string{"KB", "MB", "GB"}[exp])
}
