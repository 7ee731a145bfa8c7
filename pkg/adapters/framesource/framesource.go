// Package framesource fetches the decorative frame from a local file or
// an HTTP(S) URL.
package framesource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/user/dpframe/pkg/ports"
)

// MaxFrameBytes bounds a downloaded frame.
const MaxFrameBytes = 20 << 20

// ErrFrameTooLarge is returned when the frame exceeds MaxFrameBytes.
var ErrFrameTooLarge = errors.New("framesource: frame exceeds size limit")

// New returns an HTTP source for http(s) locations and a file source
// for everything else.
func New(location string, fs ports.FileSystem, client *http.Client) ports.FrameSource {
	if IsURL(location) {
		return NewHTTP(location, client)
	}
	return NewFile(location, fs)
}

// IsURL reports whether location is an http or https URL.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// File reads the frame through a ports.FileSystem.
type File struct {
	path string
	fs   ports.FileSystem
}

// NewFile creates a file frame source.
func NewFile(path string, fs ports.FileSystem) *File {
	return &File{path: path, fs: fs}
}

func (f *File) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size, err := f.fs.Size(f.path)
	if err != nil {
		return nil, fmt.Errorf("framesource: %w", err)
	}
	if size > MaxFrameBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrFrameTooLarge, f.path, size)
	}
	data, err := f.fs.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("framesource: %w", err)
	}
	return data, nil
}

func (f *File) Location() string { return f.path }

// HTTP downloads the frame with a GET request per attempt.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP creates a URL frame source. A nil client gets a 10s timeout.
func NewHTTP(url string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTP{url: url, client: client}
}

func (h *HTTP) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("framesource: creating request: %w", err)
	}
	req.Header.Set("Accept", "image/png,image/jpeg,image/webp,image/*")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("framesource: fetching %s: %w", h.url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("framesource: fetching %s: HTTP %d", h.url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFrameBytes+1))
	if err != nil {
		return nil, fmt.Errorf("framesource: reading response: %w", err)
	}
	if len(data) > MaxFrameBytes {
		return nil, ErrFrameTooLarge
	}
	return data, nil
}

func (h *HTTP) Location() string { return h.url }

// Cached remembers the first successful fetch of src. Failures are not
// cached so later attempts reach src again.
type Cached struct {
	src  ports.FrameSource
	mu   sync.Mutex
	data []byte
}

// NewCached wraps src.
func NewCached(src ports.FrameSource) *Cached {
	return &Cached{src: src}
}

func (c *Cached) Fetch(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data != nil {
		return c.data, nil
	}
	data, err := c.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		c.data = data
	}
	return data, nil
}

func (c *Cached) Location() string { return c.src.Location() }

var (
	_ ports.FrameSource = (*File)(nil)
	_ ports.FrameSource = (*HTTP)(nil)
	_ ports.FrameSource = (*Cached)(nil)
)
