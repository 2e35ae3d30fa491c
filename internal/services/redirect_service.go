package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/axellelanca/edgelink/internal/crawler"
	customerrors "github.com/axellelanca/edgelink/internal/errors"
	"github.com/axellelanca/edgelink/internal/metadata"
	"github.com/axellelanca/edgelink/internal/models"
	"github.com/axellelanca/edgelink/internal/repository"
)

// ResolutionKind tells the caller why it is being redirected.
type ResolutionKind int

const (
	// ResolutionTarget is a redirect to the link's target URL.
	ResolutionTarget ResolutionKind = iota
	// ResolutionPreview sends a crawler to the server-rendered preview page.
	ResolutionPreview
	// ResolutionDomain is the custom-domain fallback for an unknown code.
	ResolutionDomain
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionTarget:
		return "target"
	case ResolutionPreview:
		return "preview"
	case ResolutionDomain:
		return "domain"
	}
	return "unknown"
}

// Resolution is where a short link request should be redirected.
type Resolution struct {
	Kind     ResolutionKind
	Location string
}

// RedirectService orchestrates the resolution path: crawler branch, lookup,
// lazy expiration, custom-domain fallback and click recording.
type RedirectService struct {
	links    *LinkService
	clicks   repository.ClickRepository
	domains  repository.DomainRepository
	crawlers crawler.Detector
	previews PreviewResolver
	logger   *logrus.Entry
}

// NewRedirectService wires the resolution path. previews may be nil.
func NewRedirectService(
	links *LinkService,
	clicks repository.ClickRepository,
	domains repository.DomainRepository,
	crawlers crawler.Detector,
	previews PreviewResolver,
	logger *logrus.Logger,
) *RedirectService {
	return &RedirectService{
		links:    links,
		clicks:   clicks,
		domains:  domains,
		crawlers: crawlers,
		previews: previews,
		logger:   logger.WithField("component", "service/redirect"),
	}
}

// Resolve decides where a request for shortCode goes.
// Parameters:
//   - shortCode: the first path segment of the request
//   - host: the inbound Host header, used for the custom-domain fallback
//   - userAgent: the requesting user agent
//
// Returns:
//   - *Resolution: the redirect to perform
//   - error: ErrShortCodeNotFound for unknown or expired codes, or a store error
func (s *RedirectService) Resolve(ctx context.Context, shortCode, host, userAgent string) (*Resolution, error) {
	// Crawlers get the preview page, which does its own lookup
	if s.crawlers != nil && s.crawlers.IsCrawler(userAgent) {
		return &Resolution{Kind: ResolutionPreview, Location: PreviewPath(shortCode)}, nil
	}

	link, err := s.links.GetLinkByShortCode(ctx, shortCode)
	if err != nil {
		if !customerrors.IsNotFound(err) {
			return nil, err
		}
		return s.resolveDomain(ctx, shortCode, host)
	}

	if link.IsExpired(s.links.Now()) {
		s.expire(ctx, shortCode)
		return nil, customerrors.ErrShortCodeNotFound
	}

	if err := s.clicks.IncrementClicks(ctx, shortCode); err != nil {
		s.logger.WithError(err).WithField("code", shortCode).Error("failed to record click")
	}
	return &Resolution{Kind: ResolutionTarget, Location: link.LongURL}, nil
}

func (s *RedirectService) resolveDomain(ctx context.Context, shortCode, host string) (*Resolution, error) {
	if s.domains == nil || host == "" {
		return nil, customerrors.ErrShortCodeNotFound
	}
	domain, err := s.domains.GetDomain(ctx, host)
	if err != nil {
		if customerrors.IsNotFound(err) {
			return nil, customerrors.ErrShortCodeNotFound
		}
		return nil, err
	}
	location := strings.TrimRight(domain.Target, "/") + "/" + url.PathEscape(shortCode)
	return &Resolution{Kind: ResolutionDomain, Location: location}, nil
}

// Preview returns a live link with a complete preview, for the preview page.
// No click is recorded.
func (s *RedirectService) Preview(ctx context.Context, shortCode string) (*models.Link, error) {
	link, err := s.links.GetLinkByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	if link.IsExpired(s.links.Now()) {
		s.expire(ctx, shortCode)
		return nil, customerrors.ErrShortCodeNotFound
	}

	var p models.Preview
	switch {
	case link.Preview != nil:
		p = *link.Preview
	case s.previews != nil:
		p = s.previews.Resolve(ctx, link.LongURL)
	}
	p = metadata.Normalize(p, "")
	link.Preview = &p
	return link, nil
}

// expire is the cleanup side effect of observing an expired link. Losing the
// race against another request doing the same is harmless.
func (s *RedirectService) expire(ctx context.Context, shortCode string) {
	log := s.logger.WithField("code", shortCode)
	if err := s.links.DeleteLink(ctx, shortCode); err != nil {
		log.WithError(err).Warn("failed to delete expired link")
		return
	}
	log.Info("expired link removed")
}

// PreviewPath is the path of the preview page of shortCode.
func PreviewPath(shortCode string) string {
	return "/" + url.PathEscape(shortCode) + "/og"
}
