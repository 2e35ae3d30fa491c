// Package ratelimit implements a fixed-window request counter per client,
// stored in the key-value store.
//
// Increments are read-then-write, so concurrent requests from one client may
// lose updates and the ceiling is a best-effort bound.
package ratelimit

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axellelanca/edgelink/internal/kv"
)

const keyPrefix = "ratelimit:"

// window is the stored value of ratelimit:{client}.
type window struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"resetAt"`
}

// Decision is the outcome of one CheckAndIncrement call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration // set on rejection, rounded up to a second
}

func retryAfter(resetAt, now time.Time) time.Duration {
	wait := resetAt.Sub(now)
	if wait <= 0 {
		return 0
	}
	return (wait + time.Second - 1).Truncate(time.Second)
}

type Limiter struct {
	store  kv.Store
	limit  int
	period time.Duration
	now    func() time.Time
	logger *logrus.Entry
}

type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New builds a limiter allowing limit requests per period. A limit <= 0
// disables limiting.
func New(store kv.Store, limit int, period time.Duration, logger *logrus.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		limit:  limit,
		period: period,
		now:    time.Now,
		logger: logger.WithField("component", "ratelimit"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.limit > 0 && l.period > 0
}

// CheckAndIncrement counts one request for client. A rejected request is not
// counted. Store failures fail open.
func (l *Limiter) CheckAndIncrement(ctx context.Context, client string) Decision {
	now := l.now()
	if !l.Enabled() {
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit, ResetAt: now}
	}

	key := keyPrefix + client
	log := l.logger.WithField("client", client)

	w, err := l.read(ctx, key, now)
	if err != nil {
		log.WithError(err).Warn("rate limit read failed, allowing request")
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - 1, ResetAt: now.Add(l.period)}
	}

	if w.Count >= l.limit {
		return Decision{
			Allowed:    false,
			Limit:      l.limit,
			ResetAt:    w.ResetAt,
			RetryAfter: retryAfter(w.ResetAt, now),
		}
	}

	w.Count++
	if err := kv.PutJSON(ctx, l.store, key, &w, w.ResetAt.Sub(now)); err != nil {
		log.WithError(err).Warn("rate limit write failed, allowing request")
	}
	return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - w.Count, ResetAt: w.ResetAt}
}

// read returns the current window, or a fresh one when the key is absent,
// unreadable or past its reset instant.
func (l *Limiter) read(ctx context.Context, key string, now time.Time) (window, error) {
	fresh := window{ResetAt: now.Add(l.period)}

	w, err := kv.GetJSON[window](ctx, l.store, key)
	if err != nil {
		switch {
		case errors.Is(err, kv.ErrNotFound):
			return fresh, nil
		case errors.Is(err, kv.ErrMalformedValue):
			l.logger.WithError(err).Warn("malformed rate limit window, starting over")
			return fresh, nil
		}
		return window{}, err
	}
	if !now.Before(w.ResetAt) || w.Count < 0 {
		return fresh, nil
	}
	return *w, nil
}
