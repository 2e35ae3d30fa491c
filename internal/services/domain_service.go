package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/axellelanca/edgelink/internal/models"
	"github.com/axellelanca/edgelink/internal/repository"
)

// DomainService manages the custom domain registry.
type DomainService struct {
	domains repository.DomainRepository
	logger  *logrus.Entry
}

func NewDomainService(domains repository.DomainRepository, logger *logrus.Logger) *DomainService {
	return &DomainService{
		domains: domains,
		logger:  logger.WithField("component", "service/domain"),
	}
}

// RegisterDomain maps domain to the base URL target. Registering a domain
// again replaces its target.
//
// target is a prefix: an unknown code requested on domain redirects to
// "{target}/{code}", so "https://example.com" sends go.example.com/docs to
// https://example.com/docs. A trailing slash on target is dropped.
func (s *DomainService) RegisterDomain(ctx context.Context, domain, target string) (*models.CustomDomain, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	if err := ValidateTargetURL(target); err != nil {
		return nil, err
	}
	d := &models.CustomDomain{Domain: domain, Target: strings.TrimRight(target, "/")}
	if err := s.domains.SaveDomain(ctx, d); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"domain": d.Domain, "target": d.Target}).Info("domain registered")
	return d, nil
}

func (s *DomainService) LookupDomain(ctx context.Context, domain string) (*models.CustomDomain, error) {
	return s.domains.GetDomain(ctx, domain)
}

// RemoveDomain is idempotent.
func (s *DomainService) RemoveDomain(ctx context.Context, domain string) error {
	if err := s.domains.DeleteDomain(ctx, strings.TrimSpace(domain)); err != nil {
		return err
	}
	s.logger.WithField("domain", domain).Info("domain removed")
	return nil
}
