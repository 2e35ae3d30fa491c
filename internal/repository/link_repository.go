package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	customerrors "github.com/axellelanca/edgelink/internal/errors"
	"github.com/axellelanca/edgelink/internal/kv"
	"github.com/axellelanca/edgelink/internal/models"
)

// LinkRepository est une interface qui définit les méthodes d'accès aux données
type LinkRepository interface {
	SaveLink(ctx context.Context, link *models.Link) error
	GetLinkByShortCode(ctx context.Context, shortCode string) (*models.Link, error)
	ShortCodeExists(ctx context.Context, shortCode string) (bool, error)
	DeleteLink(ctx context.Context, shortCode string) error
	GetAllLinks(ctx context.Context) ([]models.Link, error)

	// Reverse index long URL -> short code, used for deduplication.
	FindShortCodeByURL(ctx context.Context, longURL string) (string, error)
	IndexURL(ctx context.Context, longURL, shortCode string) error
	UnindexURL(ctx context.Context, longURL, shortCode string) error
}

// KVLinkRepository est l'implémentation de LinkRepository sur un kv.Store.
type KVLinkRepository struct {
	store  kv.Store
	logger *logrus.Entry
}

// NewLinkRepository crée et retourne une nouvelle instance de KVLinkRepository.
func NewLinkRepository(store kv.Store, logger *logrus.Logger) *KVLinkRepository {
	return &KVLinkRepository{
		store:  store,
		logger: logger.WithField("component", "repository/link"),
	}
}

// SaveLink écrit l'enregistrement, en écrasant une éventuelle version précédente.
func (r *KVLinkRepository) SaveLink(ctx context.Context, link *models.Link) error {
	if err := kv.PutJSON(ctx, r.store, linkPrefix+link.ShortCode, link, 0); err != nil {
		return errors.Wrapf(err, "failed to save link %s", link.ShortCode)
	}
	return nil
}

// GetLinkByShortCode récupère un lien en utilisant son shortCode.
// Un enregistrement illisible est journalisé puis traité comme absent.
func (r *KVLinkRepository) GetLinkByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	link, err := kv.GetJSON[models.Link](ctx, r.store, linkPrefix+shortCode)
	if err != nil {
		switch {
		case errors.Is(err, kv.ErrNotFound):
			return nil, customerrors.ErrShortCodeNotFound
		case errors.Is(err, kv.ErrMalformedValue):
			r.logger.WithError(err).WithField("code", shortCode).Warn("malformed link record")
			return nil, errors.Wrap(customerrors.ErrShortCodeNotFound, customerrors.ErrMalformedRecord.Error())
		}
		return nil, errors.Wrapf(err, "failed to get link %s", shortCode)
	}
	if link.ShortCode == "" {
		link.ShortCode = shortCode
	}
	return link, nil
}

// ShortCodeExists indique si la clé est occupée, que l'enregistrement soit lisible ou non.
func (r *KVLinkRepository) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	_, err := r.store.Get(ctx, linkPrefix+shortCode)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to check short code %s", shortCode)
	}
	return true, nil
}

func (r *KVLinkRepository) DeleteLink(ctx context.Context, shortCode string) error {
	if err := r.store.Delete(ctx, linkPrefix+shortCode); err != nil {
		return errors.Wrapf(err, "failed to delete link %s", shortCode)
	}
	return nil
}

// GetAllLinks récupère tous les liens. Le coût est linéaire en nombre de clés.
func (r *KVLinkRepository) GetAllLinks(ctx context.Context) ([]models.Link, error) {
	keys, err := r.store.List(ctx, linkPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list links")
	}

	links := make([]models.Link, 0, len(keys))
	for _, key := range keys {
		link, err := r.GetLinkByShortCode(ctx, strings.TrimPrefix(key, linkPrefix))
		if err != nil {
			// list-then-fetch is not a snapshot, the key may be gone already
			if customerrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		links = append(links, *link)
	}
	return links, nil
}

func (r *KVLinkRepository) FindShortCodeByURL(ctx context.Context, longURL string) (string, error) {
	code, err := r.store.Get(ctx, targetPrefix+kv.HashKey(longURL))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return "", customerrors.ErrShortCodeNotFound
		}
		return "", errors.Wrap(err, "failed to read url index")
	}
	return code, nil
}

func (r *KVLinkRepository) IndexURL(ctx context.Context, longURL, shortCode string) error {
	if err := r.store.Put(ctx, targetPrefix+kv.HashKey(longURL), shortCode, 0); err != nil {
		return errors.Wrapf(err, "failed to index url for %s", shortCode)
	}
	return nil
}

// UnindexURL supprime l'entrée d'index seulement si elle pointe encore vers shortCode.
func (r *KVLinkRepository) UnindexURL(ctx context.Context, longURL, shortCode string) error {
	code, err := r.FindShortCodeByURL(ctx, longURL)
	if err != nil {
		if customerrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if code != shortCode {
		return nil
	}
	if err := r.store.Delete(ctx, targetPrefix+kv.HashKey(longURL)); err != nil {
		return errors.Wrapf(err, "failed to unindex url for %s", shortCode)
	}
	return nil
}
