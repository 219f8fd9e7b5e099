package mailprobe

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/optimode/mailprobe/check"
	"github.com/optimode/mailprobe/internal/resolver"
	"github.com/optimode/mailprobe/internal/smtpsession"
	"github.com/optimode/mailprobe/retry"
	"github.com/optimode/mailprobe/types"
)

// checker is the internal interface for all pipeline stages.
// Every check/ package type implements this.
type checker interface {
	Check(ctx context.Context, t *check.Target) types.CheckResult
}

// Validator is the main fluent builder struct.
// Instantiate with the New() function and configure it before the first
// Validate or RunAll call; later builder calls have no effect.
// A configured Validator is safe for concurrent use.
type Validator struct {
	dnsOpts      *DNSOptions
	smtpOpts     *SMTPOptions
	catchAllOpts *CatchAllOptions
	logger       logrus.FieldLogger

	once     sync.Once
	checkers []checker
	err      error // configuration error, returned on Validate()
}

// New creates a new Validator. By default it only performs syntax checking.
// Syntax checking always runs and cannot be disabled, because a valid email
// address is a prerequisite for the other levels.
func New() *Validator {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Validator{logger: l}
}

// WithLogger sets the logger for retries, probe failures and rejected
// addresses. The default discards everything.
func (v *Validator) WithLogger(l logrus.FieldLogger) *Validator {
	if l != nil {
		v.logger = l
	}
	return v
}

// WithDNS adds the MX lookup stage. Zero fields of the given options take
// their defaults; without options typo suggestions are enabled.
func (v *Validator) WithDNS(opts ...DNSOptions) *Validator {
	o := defaultDNSOptions()
	if len(opts) > 0 {
		o = opts[0]
		def := defaultDNSOptions()
		if o.Timeout <= 0 {
			o.Timeout = def.Timeout
		}
		if o.MaxAttempts <= 0 {
			o.MaxAttempts = def.MaxAttempts
		}
		if o.BackoffBase <= 0 {
			o.BackoffBase = def.BackoffBase
		}
	}
	v.dnsOpts = &o
	return v
}

// WithSMTP adds the RCPT TO probe of the real recipient. It implies WithDNS
// with default options when DNS was not configured explicitly.
func (v *Validator) WithSMTP(opts ...SMTPOptions) *Validator {
	def := defaultSMTPOptions()
	o := def
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.HeloDomain == "" {
		o.HeloDomain = def.HeloDomain
	}
	if o.MailFrom == "" {
		o.MailFrom = def.MailFrom
	}
	if o.Port == "" {
		o.Port = def.Port
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = def.ConnectTimeout
	}
	if o.SessionTimeout <= 0 {
		o.SessionTimeout = def.SessionTimeout
	}
	if o.Burst <= 0 {
		o.Burst = def.Burst
	}
	v.smtpOpts = &o
	if v.dnsOpts == nil {
		v.WithDNS()
	}
	return v
}

// WithCatchAll adds catch-all detection after the SMTP stage. It probes a
// synthetic recipient on the same exchanger and costs one extra SMTP
// session per address that reached it. Requires WithSMTP.
func (v *Validator) WithCatchAll(opts ...CatchAllOptions) *Validator {
	var o CatchAllOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	v.catchAllOpts = &o
	return v
}

func (v *Validator) pipeline() ([]checker, error) {
	v.once.Do(func() {
		v.checkers, v.err = v.build()
	})
	return v.checkers, v.err
}

// build assembles the stages in their fixed order: syntax, dns, smtp,
// catchall, whatever order the builder methods were called in.
func (v *Validator) build() ([]checker, error) {
	checkers := []checker{check.NewSyntaxChecker()}

	if v.catchAllOpts != nil && v.smtpOpts == nil {
		return nil, ErrCatchAllRequiresSMTP
	}

	if o := v.dnsOpts; o != nil {
		lookup, err := newLookuper(*o)
		if err != nil {
			return nil, err
		}
		r := resolver.New(lookup, resolver.Config{
			Timeout: o.Timeout,
			Policy: retry.Policy{
				MaxAttempts: o.MaxAttempts,
				Backoff:     retry.Exponential(o.BackoffBase),
			},
			Logger: v.logger,
		})
		checkers = append(checkers, check.NewDNSChecker(r, check.DNSConfig{
			SuggestTypos: o.SuggestTypos,
		}))
	}

	if o := v.smtpOpts; o != nil {
		if !check.IsSyntacticallyValid(o.MailFrom) {
			return nil, fmt.Errorf("%w: MailFrom %q is not a valid address", ErrInvalidSMTPOptions, o.MailFrom)
		}
		prober, err := smtpsession.New(smtpsession.Config{
			HeloDomain:     o.HeloDomain,
			Port:           o.Port,
			ConnectTimeout: o.ConnectTimeout,
			SessionTimeout: o.SessionTimeout,
			ProxyURL:       o.ProxyURL,
			RateLimit:      rate.Limit(o.RateLimit),
			Burst:          o.Burst,
			Dial:           o.Dial,
			Logger:         v.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSMTPOptions, err)
		}
		checkers = append(checkers, check.NewSMTPChecker(check.SMTPConfig{MailFrom: o.MailFrom}, prober))

		if c := v.catchAllOpts; c != nil {
			checkers = append(checkers, check.NewCatchAllChecker(check.CatchAllConfig{
				MailFrom:  c.MailFrom,
				GmailFrom: c.GmailFrom,
			}, prober))
		}
	}

	return checkers, nil
}

type lookupFunc MXLookupFunc

func (f lookupFunc) LookupMX(ctx context.Context, domain string) ([]types.MXRecord, error) {
	return f(ctx, domain)
}

func newLookuper(o DNSOptions) (resolver.Lookuper, error) {
	switch {
	case o.Lookup != nil:
		return lookupFunc(o.Lookup), nil
	case len(o.Nameservers) > 0:
		l, err := resolver.NewNameservers(o.Nameservers)
		if err != nil {
			return nil, fmt.Errorf("mailprobe: nameservers: %w", err)
		}
		return l, nil
	}
	return resolver.NewSystem(), nil
}

// Validate runs the configured stages on one address and returns its
// Outcome. The pipeline short-circuits: the first failing stage decides the
// status and later stages are skipped.
//
// The error is non-nil only for a configuration error or when ctx is done;
// in both cases no Outcome is produced.
func (v *Validator) Validate(ctx context.Context, address string) (Outcome, error) {
	checkers, err := v.pipeline()
	if err != nil {
		return Outcome{}, err
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	t := check.NewTarget(address)
	out := Outcome{Address: address, Status: StatusValid}

	for _, c := range checkers {
		cr := c.Check(ctx, t)
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		out.Checks = append(out.Checks, cr)
		out.Detail = cr.Details
		if cr.Level == LevelDNS && cr.MXHost != "" {
			out.MXHost = cr.MXHost
		}
		if cr.Level == LevelSMTP {
			out.SMTPCode = cr.SMTPCode
		}
		if cr.Suggestion != "" {
			out.Suggestion = cr.Suggestion
		}

		if !cr.Passed {
			out.Status = types.StatusForLevel(cr.Level)
			v.logger.WithFields(logrus.Fields{
				"address": address,
				"status":  string(out.Status),
				"detail":  cr.Details,
			}).Info("address rejected")
			return out, nil // short-circuit
		}
	}

	return out, nil
}
