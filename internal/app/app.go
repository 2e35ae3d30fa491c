// Package app builds the application object graph from configuration.
package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axellelanca/edgelink/internal/api"
	"github.com/axellelanca/edgelink/internal/config"
	"github.com/axellelanca/edgelink/internal/crawler"
	"github.com/axellelanca/edgelink/internal/kv"
	"github.com/axellelanca/edgelink/internal/metadata"
	"github.com/axellelanca/edgelink/internal/ratelimit"
	"github.com/axellelanca/edgelink/internal/repository"
	"github.com/axellelanca/edgelink/internal/services"
)

// App holds the wired components. Close releases the store.
type App struct {
	Config *config.Config
	Logger *logrus.Logger
	Store  kv.Store

	Credentials *repository.KVCredentialRepository
	Links       *services.LinkService
	Redirects   *services.RedirectService
	Analytics   *services.AnalyticsService
	Domains     *services.DomainService
	Limiter     *ratelimit.Limiter
	Metadata    *metadata.Resolver
}

// Option customizes the graph built by New, mostly for tests.
type Option func(*options)

type options struct {
	store    kv.Store
	previews services.PreviewResolver
	crawlers crawler.Detector
	linkOpts []services.LinkServiceOption
}

// WithStore skips opening the configured backend.
func WithStore(s kv.Store) Option {
	return func(o *options) { o.store = s }
}

// WithPreviewResolver replaces the HTTP metadata resolver.
func WithPreviewResolver(p services.PreviewResolver) Option {
	return func(o *options) { o.previews = p }
}

func WithCrawlerDetector(d crawler.Detector) Option {
	return func(o *options) { o.crawlers = d }
}

func WithLinkOptions(opts ...services.LinkServiceOption) Option {
	return func(o *options) { o.linkOpts = append(o.linkOpts, opts...) }
}

// New opens the store and wires repositories, services and the rate limiter.
// Bootstrap API keys from the configuration are provisioned.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store := o.store
	if store == nil {
		var err error
		if store, err = kv.Open(ctx, cfg.Storage); err != nil {
			return nil, errors.Wrap(err, "failed to open store")
		}
	}
	logger.WithField("driver", cfg.Storage.Driver).Info("key-value store ready")

	linkRepo := repository.NewLinkRepository(store, logger)
	clickRepo := repository.NewClickRepository(store, logger)
	domainRepo := repository.NewDomainRepository(store)
	credRepo := repository.NewCredentialRepository(store)

	a := &App{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Credentials: credRepo,
	}

	previews := o.previews
	if previews == nil {
		a.Metadata = metadata.NewResolver(store, metadata.Options{
			CacheTTL:     cfg.MetadataCacheTTL(),
			FetchTimeout: cfg.MetadataFetchTimeout(),
			FetchRPS:     cfg.Metadata.FetchRPS,
			FetchBurst:   cfg.Metadata.FetchBurst,
			UserAgent:    cfg.Metadata.UserAgent,
		}, logger)
		previews = a.Metadata
	}

	crawlers := o.crawlers
	if crawlers == nil {
		crawlers = crawler.NewSignatureDetector(cfg.Crawler.ExtraSignatures...)
	}

	policy := services.LinkPolicy{
		CodeLength: cfg.Links.CodeLength,
		MinTTL:     seconds(cfg.Links.MinTTLSeconds),
		MaxTTL:     seconds(cfg.Links.MaxTTLSeconds),
	}
	a.Links = services.NewLinkService(linkRepo, clickRepo, previews, policy, logger, o.linkOpts...)
	a.Redirects = services.NewRedirectService(a.Links, clickRepo, domainRepo, crawlers, previews, logger)
	a.Analytics = services.NewAnalyticsService(clickRepo, linkRepo, logger)
	a.Domains = services.NewDomainService(domainRepo, logger)
	a.Limiter = ratelimit.New(store, cfg.RateLimit.Requests, cfg.RateLimitWindow(), logger)

	for _, key := range cfg.Auth.BootstrapKeys {
		if err := credRepo.AddToken(ctx, key, "bootstrap"); err != nil {
			_ = a.Close()
			return nil, errors.Wrap(err, "failed to provision bootstrap key")
		}
	}
	if n := len(cfg.Auth.BootstrapKeys); n > 0 {
		logger.WithField("count", n).Info("bootstrap API keys provisioned")
	}

	return a, nil
}

// Router builds the gin engine serving the HTTP API.
func (a *App) Router() *gin.Engine {
	router := gin.New()
	// without trusted proxies ClientIP is the remote address, X-Forwarded-For is ignored
	if err := router.SetTrustedProxies(a.Config.Server.TrustedProxies); err != nil {
		a.Logger.WithError(err).Warn("invalid trusted proxies, forwarded headers are ignored")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery(), api.RequestLogger(a.Logger))
	api.SetupRoutes(router, api.Deps{
		Links:       a.Links,
		Redirects:   a.Redirects,
		Analytics:   a.Analytics,
		Domains:     a.Domains,
		Credentials: a.Credentials,
		Limiter:     a.Limiter,
		BaseURL:     a.Config.Server.BaseURL,
		Logger:      a.Logger,
	})
	return router
}

func (a *App) Close() error {
	return kv.Close(a.Store)
}

func seconds(n int64) time.Duration {
	return time.Duration(n) * time.Second
}
