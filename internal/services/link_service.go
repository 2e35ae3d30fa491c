// Package services contains the business logic layer for the URL shortener application
package services

import (
	"context"
	"crypto/rand"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	customerrors "github.com/axellelanca/edgelink/internal/errors"
	"github.com/axellelanca/edgelink/internal/metadata"
	"github.com/axellelanca/edgelink/internal/models"
	"github.com/axellelanca/edgelink/internal/repository"
)

// charset defines the URL-safe character set used for generating short codes.
// 64 characters give 64^6 = ~68 billion combinations for 6-character codes.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

// maxRetries bounds the number of attempts to draw an unused short code.
const maxRetries = 5

// PreviewResolver provides rich-preview metadata for a target URL.
// Implementations never fail; they fall back to default values.
type PreviewResolver interface {
	Resolve(ctx context.Context, targetURL string) models.Preview
}

// LinkPolicy holds the short code allocation and expiration rules.
type LinkPolicy struct {
	CodeLength int
	MinTTL     time.Duration
	MaxTTL     time.Duration
}

// DefaultLinkPolicy is used for zero fields of the policy given to NewLinkService.
var DefaultLinkPolicy = LinkPolicy{
	CodeLength: 6,
	MinTTL:     time.Minute,
	MaxTTL:     365 * 24 * time.Hour,
}

// CreateLinkInput is the input of CreateLink. Empty optional fields are absent.
type CreateLinkInput struct {
	URL           string
	CustomCode    string
	ExpiresIn     *int64 // seconds
	OGTitle       string
	OGDescription string
	OGImage       string
}

func (in CreateLinkInput) hasPreview() bool {
	return in.OGTitle != "" || in.OGDescription != "" || in.OGImage != ""
}

// LinkService provides business logic methods for managing shortened links.
// It acts as an intermediary between the HTTP handlers and the data repository.
type LinkService struct {
	linkRepo  repository.LinkRepository
	clickRepo repository.ClickRepository
	previews  PreviewResolver
	policy    LinkPolicy
	now       func() time.Time
	logger    *logrus.Entry
}

// LinkServiceOption configures a LinkService.
type LinkServiceOption func(*LinkService)

// WithNow replaces time.Now, which lets tests control expiration.
func WithNow(now func() time.Time) LinkServiceOption {
	return func(s *LinkService) { s.now = now }
}

// NewLinkService creates and returns a new instance of LinkService.
// previews may be nil, in which case links created without preview fields
// carry no preview.
func NewLinkService(
	linkRepo repository.LinkRepository,
	clickRepo repository.ClickRepository,
	previews PreviewResolver,
	policy LinkPolicy,
	logger *logrus.Logger,
	opts ...LinkServiceOption,
) *LinkService {
	if policy.CodeLength <= 0 {
		policy.CodeLength = DefaultLinkPolicy.CodeLength
	}
	if policy.MinTTL <= 0 {
		policy.MinTTL = DefaultLinkPolicy.MinTTL
	}
	if policy.MaxTTL <= 0 {
		policy.MaxTTL = DefaultLinkPolicy.MaxTTL
	}
	s := &LinkService{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
		previews:  previews,
		policy:    policy,
		now:       time.Now,
		logger:    logger.WithField("component", "service/link"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service's notion of the current time.
func (s *LinkService) Now() time.Time {
	return s.now()
}

// GenerateShortCode generates a cryptographically secure random short code.
// Parameters:
//   - length: the desired length of the generated code
//
// Returns:
//   - string: the generated random code
//   - error: any error that occurred during generation
func (s *LinkService) GenerateShortCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", errors.Wrap(err, "failed to generate random number")
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// CreateLink creates a new shortened link, or returns the live link already
// pointing at the same URL.
// Parameters:
//   - in: the target URL plus the optional custom code, lifetime and preview fields
//
// Returns:
//   - *models.Link: the created or existing link
//   - bool: true when a new link was written
//   - error: a validation error, ErrShortCodeTaken, ErrShortCodeGenerationFailed or a store error
func (s *LinkService) CreateLink(ctx context.Context, in CreateLinkInput) (*models.Link, bool, error) {
	// Validation comes first, nothing is read before the input is known to be good
	if err := ValidateTargetURL(in.URL); err != nil {
		return nil, false, err
	}
	if in.CustomCode != "" {
		if err := ValidateShortCode(in.CustomCode); err != nil {
			return nil, false, err
		}
	}
	var ttl time.Duration
	if in.ExpiresIn != nil {
		// bounds are checked in seconds, before the conversion can overflow
		secs := *in.ExpiresIn
		if secs < int64(s.policy.MinTTL/time.Second) || secs > int64(s.policy.MaxTTL/time.Second) {
			return nil, false, customerrors.ErrInvalidExpiration
		}
		ttl = time.Duration(secs) * time.Second
	}

	var shortCode string
	if in.CustomCode != "" {
		exists, err := s.linkRepo.ShortCodeExists(ctx, in.CustomCode)
		if err != nil {
			return nil, false, err
		}
		if exists {
			return nil, false, customerrors.ErrShortCodeTaken
		}
		shortCode = in.CustomCode
	} else {
		existing, err := s.findLiveByURL(ctx, in.URL)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
		if shortCode, err = s.allocateShortCode(ctx); err != nil {
			return nil, false, err
		}
	}

	now := s.now().UTC()
	link := &models.Link{
		ShortCode: shortCode,
		LongURL:   in.URL,
		CreatedAt: now,
	}
	if in.ExpiresIn != nil {
		expiresAt := now.Add(ttl)
		link.ExpiresAt = &expiresAt
	}
	if in.hasPreview() {
		p := metadata.Normalize(models.Preview{
			Title:       in.OGTitle,
			Description: in.OGDescription,
			ImageURL:    in.OGImage,
		}, "")
		link.Preview = &p
	} else if s.previews != nil {
		p := s.previews.Resolve(ctx, in.URL)
		link.Preview = &p
	}

	if err := s.linkRepo.SaveLink(ctx, link); err != nil {
		return nil, false, err
	}
	s.indexURL(ctx, link, in.CustomCode != "")

	s.logger.WithFields(logrus.Fields{"code": link.ShortCode, "url": link.LongURL}).Info("link created")
	return link, true, nil
}

// findLiveByURL follows the reverse index. Dangling, expired or re-targeted
// entries are ignored.
func (s *LinkService) findLiveByURL(ctx context.Context, longURL string) (*models.Link, error) {
	code, err := s.linkRepo.FindShortCodeByURL(ctx, longURL)
	if err != nil {
		if customerrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	link, err := s.linkRepo.GetLinkByShortCode(ctx, code)
	if err != nil {
		if customerrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if link.LongURL != longURL || link.IsExpired(s.now()) {
		return nil, nil
	}
	return link, nil
}

// allocateShortCode draws random codes until one is unused, up to maxRetries times.
func (s *LinkService) allocateShortCode(ctx context.Context) (string, error) {
	for i := 0; i < maxRetries; i++ {
		code, err := s.GenerateShortCode(s.policy.CodeLength)
		if err != nil {
			return "", err
		}
		exists, err := s.linkRepo.ShortCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		s.logger.WithField("code", code).Warnf("short code already exists, retrying generation (%d/%d)", i+1, maxRetries)
	}
	return "", customerrors.ErrShortCodeGenerationFailed
}

// indexURL points the reverse index at link. A custom code never takes over
// an entry that already resolves to a live link.
func (s *LinkService) indexURL(ctx context.Context, link *models.Link, custom bool) {
	if custom {
		existing, err := s.findLiveByURL(ctx, link.LongURL)
		if err == nil && existing != nil && existing.ShortCode != link.ShortCode {
			return
		}
	}
	if err := s.linkRepo.IndexURL(ctx, link.LongURL, link.ShortCode); err != nil {
		// the link itself is stored, dedup just won't find it
		s.logger.WithError(err).WithField("code", link.ShortCode).Warn("failed to index url")
	}
}

// GetLinkByShortCode returns the stored link as is, expired or not.
// Expiration is enforced by the resolution path, see RedirectService.
func (s *LinkService) GetLinkByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	return s.linkRepo.GetLinkByShortCode(ctx, shortCode)
}

// UpdateLink points an existing link at a new URL. The expiration, preview and
// creation time are kept.
// Parameters:
//   - shortCode: the link to update
//   - longURL: the new target
//
// Returns:
//   - *models.Link: the updated link
//   - error: ErrInvalidURL, ErrShortCodeNotFound (also for expired links) or a store error
func (s *LinkService) UpdateLink(ctx context.Context, shortCode, longURL string) (*models.Link, error) {
	if err := ValidateTargetURL(longURL); err != nil {
		return nil, err
	}
	link, err := s.linkRepo.GetLinkByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	if link.IsExpired(s.now()) {
		return nil, customerrors.ErrShortCodeNotFound
	}
	if link.LongURL == longURL {
		return link, nil
	}

	oldURL := link.LongURL
	link.LongURL = longURL
	if err := s.linkRepo.SaveLink(ctx, link); err != nil {
		return nil, err
	}
	if err := s.linkRepo.UnindexURL(ctx, oldURL, shortCode); err != nil {
		s.logger.WithError(err).WithField("code", shortCode).Warn("failed to unindex previous url")
	}
	s.indexURL(ctx, link, true)

	s.logger.WithFields(logrus.Fields{"code": shortCode, "url": longURL}).Info("link updated")
	return link, nil
}

// DeleteLink removes a link, its reverse index entry and its click counter.
// Deleting an unknown code is not an error.
func (s *LinkService) DeleteLink(ctx context.Context, shortCode string) error {
	link, err := s.linkRepo.GetLinkByShortCode(ctx, shortCode)
	switch {
	case err == nil:
		if err := s.linkRepo.UnindexURL(ctx, link.LongURL, shortCode); err != nil {
			s.logger.WithError(err).WithField("code", shortCode).Warn("failed to unindex url")
		}
	case !customerrors.IsNotFound(err):
		return err
	}

	if err := s.linkRepo.DeleteLink(ctx, shortCode); err != nil {
		return err
	}
	if err := s.clickRepo.DeleteClicks(ctx, shortCode); err != nil {
		s.logger.WithError(err).WithField("code", shortCode).Warn("failed to delete click counter")
	}
	return nil
}

// ListLinks returns every stored link, newest first.
func (s *LinkService) ListLinks(ctx context.Context) ([]models.Link, error) {
	links, err := s.linkRepo.GetAllLinks(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(links, func(a, b models.Link) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ShortCode, b.ShortCode)
	})
	return links, nil
}

// GetLinkStats retrieves a link and the number of clicks recorded for it.
func (s *LinkService) GetLinkStats(ctx context.Context, shortCode string) (*models.Link, int64, error) {
	link, err := s.linkRepo.GetLinkByShortCode(ctx, shortCode)
	if err != nil {
		return nil, 0, err
	}
	clicks, err := s.clickRepo.CountClicks(ctx, shortCode)
	if err != nil {
		return nil, 0, err
	}
	return link, clicks, nil
}
