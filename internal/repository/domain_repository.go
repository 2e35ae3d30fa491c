package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	customerrors "github.com/axellelanca/edgelink/internal/errors"
	"github.com/axellelanca/edgelink/internal/kv"
	"github.com/axellelanca/edgelink/internal/models"
)

// DomainRepository is the custom domain registry.
type DomainRepository interface {
	SaveDomain(ctx context.Context, domain *models.CustomDomain) error
	GetDomain(ctx context.Context, domain string) (*models.CustomDomain, error)
	DeleteDomain(ctx context.Context, domain string) error
}

type KVDomainRepository struct {
	store kv.Store
}

func NewDomainRepository(store kv.Store) *KVDomainRepository {
	return &KVDomainRepository{store: store}
}

func (r *KVDomainRepository) SaveDomain(ctx context.Context, d *models.CustomDomain) error {
	if err := r.store.Put(ctx, domainPrefix+NormalizeHost(d.Domain), d.Target, 0); err != nil {
		return errors.Wrapf(err, "failed to save domain %s", d.Domain)
	}
	return nil
}

func (r *KVDomainRepository) GetDomain(ctx context.Context, domain string) (*models.CustomDomain, error) {
	host := NormalizeHost(domain)
	if host == "" {
		return nil, customerrors.ErrDomainNotFound
	}
	target, err := r.store.Get(ctx, domainPrefix+host)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, customerrors.ErrDomainNotFound
		}
		return nil, errors.Wrapf(err, "failed to get domain %s", host)
	}
	return &models.CustomDomain{Domain: host, Target: target}, nil
}

func (r *KVDomainRepository) DeleteDomain(ctx context.Context, domain string) error {
	if err := r.store.Delete(ctx, domainPrefix+NormalizeHost(domain)); err != nil {
		return errors.Wrapf(err, "failed to delete domain %s", domain)
	}
	return nil
}

// NormalizeHost lower-cases a Host header value and strips its port.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if strings.HasPrefix(host, "[") {
		// IPv6 literal, keep the brackets off
		if end := strings.Index(host, "]"); end > 0 {
			return host[1:end]
		}
		return host
	}
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return strings.TrimSuffix(host, ".")
}
