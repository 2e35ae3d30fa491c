package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axellelanca/edgelink/internal/kv"
)

// ClickRepository est une interface qui définit les méthodes d'accès aux compteurs de clics
type ClickRepository interface {
	IncrementClicks(ctx context.Context, shortCode string) error
	CountClicks(ctx context.Context, shortCode string) (int64, error)
	TotalClicks(ctx context.Context) (int64, error)
	AllClicks(ctx context.Context) (map[string]int64, error)
	DeleteClicks(ctx context.Context, shortCode string) error
}

// KVClickRepository stocke les compteurs sous forme d'entiers décimaux.
// Les incréments sont en lecture-puis-écriture : deux redirections concurrentes
// peuvent perdre un incrément.
type KVClickRepository struct {
	store  kv.Store
	logger *logrus.Entry
}

func NewClickRepository(store kv.Store, logger *logrus.Logger) *KVClickRepository {
	return &KVClickRepository{
		store:  store,
		logger: logger.WithField("component", "repository/click"),
	}
}

// IncrementClicks incrémente le compteur du code puis le compteur global.
func (r *KVClickRepository) IncrementClicks(ctx context.Context, shortCode string) error {
	if err := r.increment(ctx, clicksPrefix+shortCode); err != nil {
		return err
	}
	return r.increment(ctx, totalClicksKey)
}

func (r *KVClickRepository) CountClicks(ctx context.Context, shortCode string) (int64, error) {
	return r.read(ctx, clicksPrefix+shortCode)
}

func (r *KVClickRepository) TotalClicks(ctx context.Context) (int64, error) {
	return r.read(ctx, totalClicksKey)
}

// AllClicks retourne les compteurs par code.
func (r *KVClickRepository) AllClicks(ctx context.Context) (map[string]int64, error) {
	keys, err := r.store.List(ctx, clicksPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list click counters")
	}
	counts := make(map[string]int64, len(keys))
	for _, key := range keys {
		n, err := r.read(ctx, key)
		if err != nil {
			return nil, err
		}
		counts[strings.TrimPrefix(key, clicksPrefix)] = n
	}
	return counts, nil
}

// DeleteClicks supprime le compteur du code et retire ses clics du total,
// au mieux : le total reste approximatif comme les incréments.
func (r *KVClickRepository) DeleteClicks(ctx context.Context, shortCode string) error {
	n, err := r.read(ctx, clicksPrefix+shortCode)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, clicksPrefix+shortCode); err != nil {
		return errors.Wrapf(err, "failed to delete clicks for %s", shortCode)
	}
	if n == 0 {
		return nil
	}
	total, err := r.read(ctx, totalClicksKey)
	if err != nil {
		return err
	}
	total = max(total-n, 0)
	if err := r.store.Put(ctx, totalClicksKey, strconv.FormatInt(total, 10), 0); err != nil {
		return errors.Wrapf(err, "failed to write counter %s", totalClicksKey)
	}
	return nil
}

func (r *KVClickRepository) increment(ctx context.Context, key string) error {
	n, err := r.read(ctx, key)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, key, strconv.FormatInt(n+1, 10), 0); err != nil {
		return errors.Wrapf(err, "failed to write counter %s", key)
	}
	return nil
}

// read retourne 0 pour une clé absente ou illisible.
func (r *KVClickRepository) read(ctx context.Context, key string) (int64, error) {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "failed to read counter %s", key)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		r.logger.WithField("key", key).WithField("value", raw).Warn("malformed click counter, treating as zero")
		return 0, nil
	}
	return n, nil
}
