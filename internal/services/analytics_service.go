package services

import (
	"context"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	customerrors "github.com/axellelanca/edgelink/internal/errors"
	"github.com/axellelanca/edgelink/internal/models"
	"github.com/axellelanca/edgelink/internal/repository"
)

// DefaultTopN is the size of the top list in the aggregate view.
const DefaultTopN = 10

type AnalyticsService struct {
	clicks repository.ClickRepository
	links  repository.LinkRepository
	logger *logrus.Entry
}

func NewAnalyticsService(clicks repository.ClickRepository, links repository.LinkRepository, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{
		clicks: clicks,
		links:  links,
		logger: logger.WithField("component", "service/analytics"),
	}
}

// ClickCount returns the clicks recorded for shortCode, 0 if none.
func (s *AnalyticsService) ClickCount(ctx context.Context, shortCode string) (int64, error) {
	return s.clicks.CountClicks(ctx, shortCode)
}

// Summary returns the total click count and the n most clicked codes, most
// clicked first. Entries are enriched with their target URL while the link exists.
// Deleting or expiring a link removes its clicks from the total, so the total
// matches the sum of all per-code counters up to lost concurrent increments.
func (s *AnalyticsService) Summary(ctx context.Context, n int) (*models.AnalyticsSummary, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	total, err := s.clicks.TotalClicks(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.clicks.AllClicks(ctx)
	if err != nil {
		return nil, err
	}

	top := make([]models.LinkClicks, 0, len(counts))
	for code, c := range counts {
		top = append(top, models.LinkClicks{ShortCode: code, Clicks: c})
	}
	slices.SortFunc(top, func(a, b models.LinkClicks) int {
		if a.Clicks != b.Clicks {
			if a.Clicks > b.Clicks {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ShortCode, b.ShortCode)
	})
	if len(top) > n {
		top = top[:n]
	}

	for i := range top {
		link, err := s.links.GetLinkByShortCode(ctx, top[i].ShortCode)
		if err != nil {
			if !customerrors.IsNotFound(err) {
				s.logger.WithError(err).WithField("code", top[i].ShortCode).Warn("failed to enrich top url")
			}
			continue
		}
		top[i].LongURL = link.LongURL
	}

	return &models.AnalyticsSummary{TotalClicks: total, TopURLs: top}, nil
}
