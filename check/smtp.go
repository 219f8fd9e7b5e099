package check

import (
	"context"
	"fmt"

	"github.com/optimode/mailprobe/types"
)

// Prober runs one SMTP session and returns the RCPT TO reply.
type Prober interface {
	Probe(ctx context.Context, mxHost, from, rcpt string) (types.ProbeResult, error)
}

// SMTPConfig is the SMTP checker configuration.
type SMTPConfig struct {
	MailFrom string
}

// SMTPChecker probes the real recipient on the primary exchanger.
// Only 250 and 251 pass; a failed session or any other code fails the
// stage. The probe is never retried.
type SMTPChecker struct {
	cfg    SMTPConfig
	prober Prober
}

func NewSMTPChecker(cfg SMTPConfig, p Prober) *SMTPChecker {
	return &SMTPChecker{cfg: cfg, prober: p}
}

func (c *SMTPChecker) Check(ctx context.Context, t *Target) types.CheckResult {
	level := types.LevelSMTP

	if !t.Email.Valid {
		return types.CheckResult{Level: level, Passed: false, Details: "skipped: invalid email"}
	}

	mxHost := t.PrimaryMX()
	if mxHost == "" {
		return types.CheckResult{Level: level, Passed: false, Details: "skipped: no MX host"}
	}

	res, err := c.prober.Probe(ctx, mxHost, c.cfg.MailFrom, t.Email.Raw)
	if err != nil {
		return types.CheckResult{
			Level:   level,
			Passed:  false,
			Details: fmt.Sprintf("SMTP probe failed: %v", err),
			MXHost:  mxHost,
		}
	}
	if !res.Accepted() {
		return types.CheckResult{
			Level:    level,
			Passed:   false,
			Details:  fmt.Sprintf("RCPT rejected: %s", res.Message),
			MXHost:   mxHost,
			SMTPCode: res.Code,
		}
	}

	return types.CheckResult{
		Level:    level,
		Passed:   true,
		Details:  "RCPT TO accepted",
		MXHost:   mxHost,
		SMTPCode: res.Code,
	}
}
