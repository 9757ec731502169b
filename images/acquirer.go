// Package images downloads, filters and re-encodes product imagery.
package images

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"furniture-extractor/internal/types"
	"furniture-extractor/utils"
)

// ErrUndersized marks an image whose encoded payload is below the minimum byte size
var ErrUndersized = errors.New("encoded image below minimum size")

const cacheTTL = 30 * time.Minute

// Result is the outcome of acquiring images for one product
type Result struct {
	Assets []types.ImageAsset
	// Errors holds one ImageDownloadError per rejected candidate
	Errors []error
	// Placeholders counts candidates dropped by the placeholder filter
	Placeholders int
}

type cached struct {
	asset types.ImageAsset
	err   error
}

// Acquirer fetches product images concurrently and keeps the first acceptable ones
type Acquirer struct {
	client *resty.Client
	config types.ImageConfig
	logger types.Logger
	cache  *expirable.LRU[string, cached]
}

// NewAcquirer creates an image acquirer
func NewAcquirer(config *types.Config, logger types.Logger) *Acquirer {
	client := resty.New()
	client.SetHeader("User-Agent", config.Session.UserAgent)
	client.SetHeader("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	client.SetTimeout(config.Images.Timeout)

	size := config.Images.CacheSize
	if size <= 0 {
		size = 1
	}

	return &Acquirer{
		client: client,
		config: config.Images,
		logger: logger,
		cache:  expirable.NewLRU[string, cached](size, nil, cacheTTL),
	}
}

// SetTransport replaces the underlying transport. Tests use it with httpmock.
func (a *Acquirer) SetTransport(transport http.RoundTripper) {
	a.client.SetTransport(transport)
}

// Acquire downloads candidates in order and returns at most MaxImages accepted
// assets. Downloads run in windows no larger than the remaining slots, so the
// accepted assets are always the first acceptable candidates.
func (a *Acquirer) Acquire(ctx context.Context, candidates []string) Result {
	var result Result

	var queue []string
	for _, u := range utils.RemoveDuplicateURLs(candidates) {
		if IsPlaceholder(u, a.config.PlaceholderMarkers) {
			result.Placeholders++
			continue
		}
		queue = append(queue, u)
	}

	limit := a.config.MaxImages
	for len(queue) > 0 && len(result.Assets) < limit {
		if ctx.Err() != nil {
			break
		}

		window := min(a.config.Concurrency, limit-len(result.Assets), len(queue))
		batch := queue[:window]
		queue = queue[window:]

		outcomes := make([]cached, len(batch))
		var g errgroup.Group
		g.SetLimit(window)
		for i, u := range batch {
			g.Go(func() error {
				outcomes[i] = a.fetch(ctx, u)
				return nil
			})
		}
		_ = g.Wait()

		for _, o := range outcomes {
			if o.err != nil {
				result.Errors = append(result.Errors, o.err)
				continue
			}
			if len(result.Assets) < limit {
				result.Assets = append(result.Assets, o.asset)
			}
		}
	}

	return result
}

func (a *Acquirer) fetch(ctx context.Context, imageURL string) cached {
	if hit, ok := a.cache.Get(imageURL); ok {
		return copyCached(hit)
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	res, err := a.client.R().
		SetContext(ctx).
		Get(imageURL)
	if err != nil {
		// transient; not cached
		return cached{err: types.ImageDownloadError{URL: imageURL, Err: err}}
	}
	if res.StatusCode() != http.StatusOK {
		return cached{err: types.ImageDownloadError{URL: imageURL, Err: fmt.Errorf("unexpected status code: %d", res.StatusCode())}}
	}

	out := cached{}
	asset, err := Process(res.Body(), a.config.MaxDimension, a.config.Quality)
	switch {
	case err != nil:
		out.err = types.ImageDownloadError{URL: imageURL, Err: err}
	case asset.ByteSize < a.config.MinBytes:
		out.err = types.ImageDownloadError{URL: imageURL, Err: fmt.Errorf("%w: %d < %d bytes", ErrUndersized, asset.ByteSize, a.config.MinBytes)}
	default:
		asset.SourceURL = imageURL
		out.asset = asset
	}

	a.cache.Add(imageURL, out)
	if out.err != nil {
		a.logger.Debugf("Rejected image %s: %v", imageURL, out.err)
	}
	return copyCached(out)
}

// copyCached gives every caller its own payload so assets never share backing arrays
func copyCached(c cached) cached {
	if c.asset.Data != nil {
		data := make([]byte, len(c.asset.Data))
		copy(data, c.asset.Data)
		c.asset.Data = data
	}
	return c
}

// IsPlaceholder reports whether imageURL contains any placeholder marker
func IsPlaceholder(imageURL string, markers []string) bool {
	lower := strings.ToLower(imageURL)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// Len returns the number of cached outcomes
func (a *Acquirer) Len() int {
	return a.cache.Len()
}
