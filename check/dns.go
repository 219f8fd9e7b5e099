package check

import (
	"context"
	"errors"
	"fmt"

	"github.com/optimode/mailprobe/internal/resolver"
	"github.com/optimode/mailprobe/types"
)

// MXResolver resolves the ordered mail exchangers of a domain.
type MXResolver interface {
	ResolveMX(ctx context.Context, domain string) ([]types.MXRecord, error)
}

// DNSConfig is the DNS checker configuration.
type DNSConfig struct {
	// SuggestTypos fills Suggestion on failure when the domain is a near
	// miss of a major provider.
	SuggestTypos  bool
	TypoThreshold int
}

// DNSChecker verifies that the domain has at least one MX record and
// records the exchangers on the Target.
type DNSChecker struct {
	cfg      DNSConfig
	resolver MXResolver
}

func NewDNSChecker(r MXResolver, cfg DNSConfig) *DNSChecker {
	if cfg.TypoThreshold <= 0 {
		cfg.TypoThreshold = 2
	}
	return &DNSChecker{cfg: cfg, resolver: r}
}

func (c *DNSChecker) Check(ctx context.Context, t *Target) types.CheckResult {
	level := types.LevelDNS

	if !t.Email.Valid {
		return types.CheckResult{Level: level, Passed: false, Details: "skipped: invalid email"}
	}

	records, err := c.resolver.ResolveMX(ctx, t.Email.Domain)
	if err != nil {
		res := types.CheckResult{Level: level, Passed: false}
		if errors.Is(err, resolver.ErrNotFound) {
			res.Details = "no MX records found"
		} else {
			res.Details = fmt.Sprintf("MX lookup failed: %v", err)
		}
		if c.cfg.SuggestTypos {
			res.Suggestion = SuggestDomain(t.Email.Domain, c.cfg.TypoThreshold)
		}
		return res
	}

	t.MX = records
	return types.CheckResult{
		Level:   level,
		Passed:  true,
		Details: fmt.Sprintf("%d MX record(s) found", len(records)),
		MXHost:  t.PrimaryMX(),
	}
}
