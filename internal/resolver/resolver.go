// Package resolver looks up the mail exchangers of a domain. It separates
// authoritative negative answers, which are final, from transient failures,
// which are retried under an explicit retry.Policy.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/optimode/mailprobe/retry"
	"github.com/optimode/mailprobe/types"
)

var (
	// ErrNotFound is an authoritative negative: the domain does not exist or
	// has no usable MX records. It is never retried.
	ErrNotFound = errors.New("resolver: no MX records")
)

// Lookuper performs a single MX query. Implementations must wrap
// authoritative negative answers in ErrNotFound; every other error is
// treated as transient.
type Lookuper interface {
	LookupMX(ctx context.Context, domain string) ([]types.MXRecord, error)
}

// Config configures a Resolver.
type Config struct {
	// Timeout bounds each attempt. Default: 5s
	Timeout time.Duration
	// Policy governs retries of transient failures.
	// Default: 3 attempts, 1s * 2^attempt backoff.
	Policy retry.Policy
	// Logger receives retry and failure events. Default: discard.
	Logger logrus.FieldLogger
}

// DefaultPolicy is the retry policy used when Config.Policy is unset.
func DefaultPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, Backoff: retry.Exponential(time.Second)}
}

// Resolver resolves MX records with per-attempt timeouts and retries.
// It keeps no state between calls and is safe for concurrent use.
type Resolver struct {
	lookup Lookuper
	cfg    Config
}

// New creates a Resolver over the given Lookuper.
func New(l Lookuper, cfg Config) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Policy.MaxAttempts <= 0 {
		cfg.Policy = DefaultPolicy()
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Logger = l
	}
	return &Resolver{lookup: l, cfg: cfg}
}

// ResolveMX returns the MX records of domain sorted ascending by preference.
// The error wraps ErrNotFound for authoritative negatives, or
// retry.ErrExhausted when every attempt failed transiently.
func (r *Resolver) ResolveMX(ctx context.Context, domain string) ([]types.MXRecord, error) {
	log := r.cfg.Logger.WithField("domain", domain)

	records, err := retry.Do(ctx, r.cfg.Policy, func(ctx context.Context) ([]types.MXRecord, error) {
		actx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()

		recs, err := r.lookup.LookupMX(actx, domain)
		if err == nil && len(recs) == 0 {
			err = fmt.Errorf("%w for %s", ErrNotFound, domain)
		}
		if errors.Is(err, ErrNotFound) {
			return nil, retry.Permanent(err)
		}
		return recs, err
	}, func(attempt int, err error, wait time.Duration) {
		log.WithFields(logrus.Fields{
			"attempt": attempt,
			"wait":    wait.String(),
		}).WithError(err).Warn("MX lookup failed, retrying")
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.WithError(err).Warn("MX lookup gave up")
		}
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Pref < records[j].Pref
	})
	return records, nil
}
