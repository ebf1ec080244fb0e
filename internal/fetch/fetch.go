package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/trovato-shop/trovato/internal/domain"
	"github.com/trovato-shop/trovato/internal/metrics"
)

const (
	defaultTimeout  = 6 * time.Second
	defaultMaxBytes = 8 << 20 // per image
)

// Result is one download outcome. Position refers to the caller's candidate
// ordering and is preserved across failures.
type Result struct {
	Position int
	Image    domain.ImageInput
	Err      error
}

// Fetcher downloads candidate images. One failed or timed-out download never
// fails the batch; the caller excludes that position.
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
	logger   *zap.Logger
}

// New creates a fetcher with a per-image timeout.
func New(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		client:   &http.Client{},
		timeout:  timeout,
		maxBytes: defaultMaxBytes,
		logger:   logger,
	}
}

// Fetch downloads a single image within the per-image timeout.
func (f *Fetcher) Fetch(ctx context.Context, url string) (domain.ImageInput, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return domain.ImageInput{}, fmt.Errorf("new request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.ImageInput{}, fmt.Errorf("fetch %s: %w", url, domain.ErrUpstreamTimeout)
		}
		return domain.ImageInput{}, fmt.Errorf("fetch %s: %w", url, domain.ErrUpstreamUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.ImageInput{}, fmt.Errorf(
			"fetch %s: status %d: %w", url, resp.StatusCode, domain.ErrUpstreamUnavailable,
		)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		if ctx.Err() != nil {
			return domain.ImageInput{}, fmt.Errorf("read %s: %w", url, domain.ErrUpstreamTimeout)
		}
		return domain.ImageInput{}, fmt.Errorf("read %s: %w", url, err)
	}
	if len(data) == 0 {
		return domain.ImageInput{}, fmt.Errorf("fetch %s: empty body: %w", url, domain.ErrUnsupportedImage)
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(mime)
	if mime == "" {
		mime = "image/jpeg"
	}

	return domain.ImageFromBytes(data, mime), nil
}

// FetchAll downloads all urls in parallel, each with its own timeout.
// Results come back in input order; failed positions carry Err instead of an
// image.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(pos int, url string) {
			defer wg.Done()

			img, err := f.Fetch(ctx, url)
			if err != nil {
				metrics.ImageDownloadsTotal.WithLabelValues("error").Inc()
				f.logger.Warn("candidate image download failed",
					zap.Int("position", pos),
					zap.String("url", url),
					zap.Error(err),
				)
				results[pos] = Result{Position: pos, Err: err}
				return
			}

			metrics.ImageDownloadsTotal.WithLabelValues("ok").Inc()
			results[pos] = Result{Position: pos, Image: img}
		}(i, url)
	}
	wg.Wait()

	return results
}
