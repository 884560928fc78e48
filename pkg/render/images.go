package render

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/mdgraph/internal/logging"
	"github.com/aretw0/mdgraph/pkg/domain"
)

// DefaultMaxImageBytes bounds a single download.
const DefaultMaxImageBytes = 10 << 20

// ErrImageTooLarge is returned when a download exceeds the fetcher limit.
var ErrImageTooLarge = errors.New("image exceeds size limit")

// ImageFetcher downloads remote node images into a local directory so graphviz can
// embed them. Files are named after the sha256 of the URL and reused across calls.
type ImageFetcher struct {
	dir      string
	client   *http.Client
	logger   *slog.Logger
	maxBytes int64
}

// FetcherOption configures an ImageFetcher.
type FetcherOption func(*ImageFetcher)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *ImageFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithFetcherLogger sets the logger used to report skipped images.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *ImageFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithMaxImageBytes sets the largest accepted download. Non-positive values keep the default.
func WithMaxImageBytes(n int64) FetcherOption {
	return func(f *ImageFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// NewImageFetcher creates a fetcher storing files under dir.
func NewImageFetcher(dir string, opts ...FetcherOption) *ImageFetcher {
	f := &ImageFetcher{
		dir:      dir,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logging.NewNop(),
		maxBytes: DefaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL unless it is already cached and returns the local path.
func (f *ImageFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("image %q: only http(s) URLs can be fetched", rawURL)
	}

	sum := sha256.Sum256([]byte(rawURL))
	name := hex.EncodeToString(sum[:]) + imageExt(u.Path)
	target := filepath.Join(f.dir, name)
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image cache dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image %q: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image %q: status %d", rawURL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(f.dir, "img-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	// One byte past the limit tells a complete file from a truncated one.
	n, err := io.Copy(tmp, io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write image %q: %w", rawURL, err)
	}
	if n > f.maxBytes {
		tmp.Close()
		return "", fmt.Errorf("%w: %q is larger than %d bytes", ErrImageTooLarge, rawURL, f.maxBytes)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}
	return target, nil
}

// LocalizeImages fetches the image of every node that has one and returns a map of
// node key to local path. Images that cannot be fetched are logged and left out, so
// the renderer falls back to the original URL.
func (f *ImageFetcher) LocalizeImages(ctx context.Context, d *domain.Diagram) map[string]string {
	out := make(map[string]string)
	for _, n := range d.Nodes() {
		if n.Image == "" {
			continue
		}
		p, err := f.Fetch(ctx, n.Image)
		if err != nil {
			f.logger.Warn("image not localized", "key", n.Key, "url", n.Image, "error", err)
			continue
		}
		out[n.Key] = p
	}
	return out
}

func imageExt(p string) string {
	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".bmp":
		return ext
	}
	return ".png"
}
