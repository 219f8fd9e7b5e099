package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/optimode/mailprobe/types"
)

const (
	defaultCatchAllFrom = "test@example.com"
	defaultGmailFrom    = "test@gmail.com"
	gmailDomain         = "gmail.com"
)

// CatchAllConfig is the catch-all checker configuration.
type CatchAllConfig struct {
	// MailFrom is the sender for ordinary domains. Default: test@example.com
	MailFrom string
	// GmailFrom is the sender for gmail.com, whose edge servers refuse
	// foreign-domain senders before RCPT. Default: test@gmail.com
	GmailFrom string
	// LocalPart generates the synthetic recipient. Default: "nonexistent-"
	// followed by 16 random hex characters.
	LocalPart func() string
}

// CatchAllChecker probes a recipient that should not exist to tell a
// domain that accepts everything from one that validated the real address.
//
// The verdict is a heuristic, not a protocol guarantee:
//   - gmail.com: catch-all unless the synthetic recipient gets 550;
//   - any other domain: catch-all only when it gets 250.
//
// A failed probe is never reported as catch-all.
type CatchAllChecker struct {
	cfg    CatchAllConfig
	prober Prober
}

func NewCatchAllChecker(cfg CatchAllConfig, p Prober) *CatchAllChecker {
	if cfg.MailFrom == "" {
		cfg.MailFrom = defaultCatchAllFrom
	}
	if cfg.GmailFrom == "" {
		cfg.GmailFrom = defaultGmailFrom
	}
	if cfg.LocalPart == nil {
		cfg.LocalPart = syntheticLocalPart
	}
	return &CatchAllChecker{cfg: cfg, prober: p}
}

func syntheticLocalPart() string {
	return "nonexistent-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// IsCatchAll reports whether the exchanger accepted a synthetic recipient
// at domain. It costs one SMTP session.
func (c *CatchAllChecker) IsCatchAll(ctx context.Context, exchangeHost, domain string) bool {
	catchAll, _, _ := c.detect(ctx, exchangeHost, domain)
	return catchAll
}

func (c *CatchAllChecker) detect(ctx context.Context, exchangeHost, domain string) (bool, types.ProbeResult, error) {
	gmail := strings.EqualFold(domain, gmailDomain)
	from := c.cfg.MailFrom
	if gmail {
		from = c.cfg.GmailFrom
	}

	res, err := c.prober.Probe(ctx, exchangeHost, from, c.cfg.LocalPart()+"@"+domain)
	if err != nil {
		return false, res, err
	}
	if gmail {
		return res.Code != 550, res, nil
	}
	return res.Code == 250, res, nil
}

func (c *CatchAllChecker) Check(ctx context.Context, t *Target) types.CheckResult {
	level := types.LevelCatchAll

	if !t.Email.Valid {
		return types.CheckResult{Level: level, Passed: false, Details: "skipped: invalid email"}
	}
	mxHost := t.PrimaryMX()
	if mxHost == "" {
		return types.CheckResult{Level: level, Passed: false, Details: "skipped: no MX host"}
	}

	catchAll, res, err := c.detect(ctx, mxHost, t.Email.Domain)
	switch {
	case err != nil:
		return types.CheckResult{
			Level:   level,
			Passed:  true,
			Details: fmt.Sprintf("catch-all probe inconclusive: %v", err),
			MXHost:  mxHost,
		}
	case catchAll:
		return types.CheckResult{
			Level:    level,
			Passed:   false,
			Details:  fmt.Sprintf("domain accepts unknown recipients: %s", res.Message),
			MXHost:   mxHost,
			SMTPCode: res.Code,
		}
	}
	return types.CheckResult{
		Level:    level,
		Passed:   true,
		Details:  "domain rejects unknown recipients",
		MXHost:   mxHost,
		SMTPCode: res.Code,
	}
}
