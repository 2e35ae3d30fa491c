package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/axellelanca/edgelink/internal/kv"
)

// CredentialRepository holds the bearer tokens accepted on /api/*.
// A token is valid when its key exists with a non-empty value.
type CredentialRepository interface {
	ValidateToken(ctx context.Context, token string) (bool, error)
	AddToken(ctx context.Context, token, label string) error
}

type KVCredentialRepository struct {
	store kv.Store
}

func NewCredentialRepository(store kv.Store) *KVCredentialRepository {
	return &KVCredentialRepository{store: store}
}

func (r *KVCredentialRepository) ValidateToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	v, err := r.store.Get(ctx, credentialPrefix+token)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to read credential")
	}
	return strings.TrimSpace(v) != "", nil
}

func (r *KVCredentialRepository) AddToken(ctx context.Context, token, label string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("empty token")
	}
	if strings.TrimSpace(label) == "" {
		label = "default"
	}
	if err := r.store.Put(ctx, credentialPrefix+token, label, 0); err != nil {
		return errors.Wrap(err, "failed to store credential")
	}
	return nil
}
