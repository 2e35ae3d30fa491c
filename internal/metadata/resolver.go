// Package metadata resolves the rich-preview fields of a target URL: Open
// Graph tags fetched from the page, cached in the key-value store, with a
// fallback for every field that is missing or unusable.
package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	customerrors "github.com/axellelanca/edgelink/internal/errors"
	"github.com/axellelanca/edgelink/internal/kv"
	"github.com/axellelanca/edgelink/internal/models"
)

const (
	cachePrefix  = "meta:"
	maxBodyBytes = 1 << 20
)

// Options configures a Resolver. Zero values fall back to the defaults below.
type Options struct {
	CacheTTL     time.Duration // default 1h
	FetchTimeout time.Duration // default 5s
	FetchRPS     float64       // <= 0 disables the throttle
	FetchBurst   int
	UserAgent    string
	HTTPClient   *http.Client
}

// Resolver fetches and caches preview metadata. It is safe for concurrent use.
type Resolver struct {
	store     kv.Store
	client    *http.Client
	limiter   *rate.Limiter
	cacheTTL  time.Duration
	timeout   time.Duration
	userAgent string
	logger    *logrus.Entry
}

func NewResolver(store kv.Store, opts Options, logger *logrus.Logger) *Resolver {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 5 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "edgelink-preview/1.0"
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.FetchRPS > 0 {
		burst := opts.FetchBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.FetchRPS), burst)
	}

	return &Resolver{
		store:     store,
		client:    opts.HTTPClient,
		limiter:   limiter,
		cacheTTL:  opts.CacheTTL,
		timeout:   opts.FetchTimeout,
		userAgent: opts.UserAgent,
		logger:    logger.WithField("component", "metadata"),
	}
}

// Resolve never fails: fetch and cache errors are logged and the fallback
// values are returned instead.
func (r *Resolver) Resolve(ctx context.Context, targetURL string) models.Preview {
	key := cachePrefix + kv.HashKey(targetURL)
	log := r.logger.WithField("url", targetURL)

	cached, err := kv.GetJSON[models.Preview](ctx, r.store, key)
	if err == nil {
		return Normalize(*cached, "")
	}
	if !errors.Is(err, kv.ErrNotFound) {
		log.WithError(err).Warn("unreadable metadata cache entry, refetching")
	}

	if !r.limiter.Allow() {
		log.Debug("metadata fetch throttled, using fallback")
		return Normalize(models.Preview{}, "")
	}

	p, docTitle, err := r.fetch(ctx, targetURL)
	if err != nil {
		log.WithError(err).Warn("metadata fetch failed, using fallback")
	}
	out := Normalize(p, docTitle)

	if err := kv.PutJSON(ctx, r.store, key, &out, r.cacheTTL); err != nil {
		log.WithError(err).Warn("failed to cache metadata")
	}
	return out
}

func (r *Resolver) fetch(ctx context.Context, targetURL string) (models.Preview, string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return models.Preview{}, "", customerrors.ErrMetadataFetchFailed{URL: targetURL, Reason: err.Error()}
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return models.Preview{}, "", customerrors.ErrMetadataFetchFailed{URL: targetURL, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return models.Preview{}, "", customerrors.ErrMetadataFetchFailed{
			URL:    targetURL,
			Reason: fmt.Sprintf("unexpected status %s", resp.Status),
		}
	}

	p, docTitle, err := Extract(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.Preview{}, "", customerrors.ErrMetadataFetchFailed{URL: targetURL, Reason: err.Error()}
	}
	return p, docTitle, nil
}
