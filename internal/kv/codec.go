package kv

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ErrMalformedValue is returned by GetJSON when the stored value is not valid
// JSON for the requested type.
var ErrMalformedValue = errors.New("kv: malformed value")

// GetJSON reads key and decodes it into a new T.
func GetJSON[T any](ctx context.Context, s Store, key string) (*T, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var result T
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, errors.Wrapf(ErrMalformedValue, "key `%s`: %s", key, err.Error())
	}
	return &result, nil
}

// PutJSON encodes val and stores it under key.
func PutJSON[T any](ctx context.Context, s Store, key string, val *T, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal json for key `%s`", key)
	}
	return s.Put(ctx, key, string(b), ttl)
}
