package mailprobe_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optimode/mailprobe"
)

func TestNew_SyntaxOnly(t *testing.T) {
	v := mailprobe.New()
	ctx := context.Background()

	res, err := v.Validate(ctx, "user@example.com")
	require.NoError(t, err)
	assert.True(t, res.Valid())
	assert.Equal(t, mailprobe.StatusValid, res.Status)
	assert.Len(t, res.Checks, 1)
	assert.Equal(t, mailprobe.LevelSyntax, res.Checks[0].Level)

	res, err = v.Validate(ctx, "invalid")
	require.NoError(t, err)
	assert.False(t, res.Valid())
	assert.Equal(t, mailprobe.StatusInvalidSyntax, res.Status)
}

func TestValidate_Pipeline(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		wantStatus mailprobe.Status
		wantLevels []mailprobe.CheckLevel
		wantCode   int
	}{
		{
			name:       "deliverable mailbox",
			address:    "alice@example.test",
			wantStatus: mailprobe.StatusValid,
			wantLevels: []mailprobe.CheckLevel{mailprobe.LevelSyntax, mailprobe.LevelDNS, mailprobe.LevelSMTP, mailprobe.LevelCatchAll},
			wantCode:   250,
		},
		{
			name:       "bad syntax",
			address:    "bad syntax@@x",
			wantStatus: mailprobe.StatusInvalidSyntax,
			wantLevels: []mailprobe.CheckLevel{mailprobe.LevelSyntax},
		},
		{
			name:       "domain without mail server",
			address:    "user@nonexistent.test",
			wantStatus: mailprobe.StatusNoMailServer,
			wantLevels: []mailprobe.CheckLevel{mailprobe.LevelSyntax, mailprobe.LevelDNS},
		},
		{
			name:       "transient DNS failure exhausts retries",
			address:    "user@flaky.test",
			wantStatus: mailprobe.StatusNoMailServer,
			wantLevels: []mailprobe.CheckLevel{mailprobe.LevelSyntax, mailprobe.LevelDNS},
		},
		{
			name:       "unknown recipient",
			address:    "ghost@example.test",
			wantStatus: mailprobe.StatusConnectionFailed,
			wantLevels: []mailprobe.CheckLevel{mailprobe.LevelSyntax, mailprobe.LevelDNS, mailprobe.LevelSMTP},
			wantCode:   550,
		},
		{
			name:       "unreachable exchanger",
			address:    "bob@down.test",
			wantStatus: mailprobe.StatusConnectionFailed,
			wantLevels: []mailprobe.CheckLevel{mailprobe.LevelSyntax, mailprobe.LevelDNS, mailprobe.LevelSMTP},
		},
		{
			name:       "catch-all domain",
			address:    "anyone@catchall.test",
			wantStatus: mailprobe.StatusCatchAll,
			wantLevels: []mailprobe.CheckLevel{mailprobe.LevelSyntax, mailprobe.LevelDNS, mailprobe.LevelSMTP, mailprobe.LevelCatchAll},
			wantCode:   250,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dns, mta := newWorld()
			res, err := fullValidator(dns, mta).Validate(context.Background(), tt.address)
			require.NoError(t, err)

			assert.Equal(t, tt.address, res.Address)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantCode, res.SMTPCode)
			assert.NotEmpty(t, res.Detail)

			var levels []mailprobe.CheckLevel
			for _, c := range res.Checks {
				levels = append(levels, c.Level)
			}
			assert.Equal(t, tt.wantLevels, levels)
		})
	}
}

func TestValidate_InvalidSyntaxMakesNoNetworkCalls(t *testing.T) {
	dns, mta := newWorld()
	res, err := fullValidator(dns, mta).Validate(context.Background(), "bad syntax@@x")
	require.NoError(t, err)

	assert.Equal(t, mailprobe.StatusInvalidSyntax, res.Status)
	assert.Zero(t, dns.lookups.Load())
	assert.Zero(t, mta.sessions.Load())
}

func TestValidate_ProbesPrimaryExchanger(t *testing.T) {
	dns, mta := newWorld()
	res, err := fullValidator(dns, mta).Validate(context.Background(), "alice@example.test")
	require.NoError(t, err)

	assert.Equal(t, "mx1.example.test", res.MXHost)
	rcpts := mta.recipients()
	require.Len(t, rcpts, 2)
	assert.Equal(t, "alice@example.test", rcpts[0])
	assert.Regexp(t, `^nonexistent-[0-9a-f]{16}@example\.test$`, rcpts[1])
}

func TestValidate_FlakyDNSIsRetried(t *testing.T) {
	dns, mta := newWorld()
	_, err := fullValidator(dns, mta).Validate(context.Background(), "user@flaky.test")
	require.NoError(t, err)
	assert.EqualValues(t, 2, dns.lookups.Load())
}

func TestValidate_NoMailServerIsNotRetried(t *testing.T) {
	dns, mta := newWorld()
	_, err := fullValidator(dns, mta).Validate(context.Background(), "user@nonexistent.test")
	require.NoError(t, err)
	assert.EqualValues(t, 1, dns.lookups.Load())
}

func TestValidate_WithoutCatchAll(t *testing.T) {
	dns, mta := newWorld()
	v := mailprobe.New().
		WithDNS(mailprobe.DNSOptions{Lookup: dns.lookup}).
		WithSMTP(mailprobe.SMTPOptions{Dial: mta.dial})

	res, err := v.Validate(context.Background(), "anyone@catchall.test")
	require.NoError(t, err)
	assert.Equal(t, mailprobe.StatusValid, res.Status)
	_, ran := res.CheckFor(mailprobe.LevelCatchAll)
	assert.False(t, ran)
	assert.Equal(t, []string{"anyone@catchall.test"}, mta.recipients())
}

func TestValidate_StageOrderIgnoresBuilderOrder(t *testing.T) {
	dns, mta := newWorld()
	v := mailprobe.New().
		WithCatchAll().
		WithSMTP(mailprobe.SMTPOptions{Dial: mta.dial}).
		WithDNS(mailprobe.DNSOptions{Lookup: dns.lookup})

	res, err := v.Validate(context.Background(), "alice@example.test")
	require.NoError(t, err)
	require.Len(t, res.Checks, 4)
	assert.Equal(t, mailprobe.LevelSyntax, res.Checks[0].Level)
	assert.Equal(t, mailprobe.LevelDNS, res.Checks[1].Level)
	assert.Equal(t, mailprobe.LevelSMTP, res.Checks[2].Level)
	assert.Equal(t, mailprobe.LevelCatchAll, res.Checks[3].Level)
}

func TestValidate_TypoSuggestion(t *testing.T) {
	dns, _ := newWorld()
	v := mailprobe.New().WithDNS(mailprobe.DNSOptions{Lookup: dns.lookup, SuggestTypos: true})

	res, err := v.Validate(context.Background(), "user@gmial.com")
	require.NoError(t, err)
	assert.Equal(t, mailprobe.StatusNoMailServer, res.Status)
	assert.Equal(t, "gmail.com", res.Suggestion)
}

func TestValidate_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		v       *mailprobe.Validator
		wantErr error
	}{
		{
			name:    "catch-all without SMTP",
			v:       mailprobe.New().WithDNS().WithCatchAll(),
			wantErr: mailprobe.ErrCatchAllRequiresSMTP,
		},
		{
			name:    "malformed sender",
			v:       mailprobe.New().WithSMTP(mailprobe.SMTPOptions{MailFrom: "not-an-address"}),
			wantErr: mailprobe.ErrInvalidSMTPOptions,
		},
		{
			name:    "unsupported proxy scheme",
			v:       mailprobe.New().WithSMTP(mailprobe.SMTPOptions{ProxyURL: "ftp://127.0.0.1:21"}),
			wantErr: mailprobe.ErrInvalidSMTPOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.v.Validate(context.Background(), "user@example.com")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, res.Address)

			_, err = tt.v.RunAll(context.Background(), []string{"user@example.com"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_CancelledContext(t *testing.T) {
	dns, mta := newWorld()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := fullValidator(dns, mta).Validate(ctx, "alice@example.test")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, mailprobe.Outcome{}, res)
	assert.Zero(t, mta.sessions.Load())
}

func TestValidate_CancelledDuringLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	v := mailprobe.New().WithDNS(mailprobe.DNSOptions{
		Lookup: func(ctx context.Context, _ string) ([]mailprobe.MXRecord, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	res, err := v.Validate(ctx, "user@example.test")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Status)
}

func TestValidate_LogsRejections(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	dns, mta := newWorld()
	v := fullValidator(dns, mta).WithLogger(logger)

	_, err := v.Validate(context.Background(), "user@nonexistent.test")
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "address rejected", entry.Message)
	assert.Equal(t, "user@nonexistent.test", entry.Data["address"])
	assert.Equal(t, "no_mail_server", entry.Data["status"])
}
