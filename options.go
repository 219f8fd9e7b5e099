package mailprobe

import (
	"context"
	"net"
	"time"
)

// MXLookupFunc performs one MX query. It must wrap authoritative negative
// answers in ErrNoMXRecords; any other error is retried.
type MXLookupFunc func(ctx context.Context, domain string) ([]MXRecord, error)

// DNSOptions configures the MX lookup stage.
type DNSOptions struct {
	// Timeout bounds each lookup attempt. Default: 5s
	Timeout time.Duration
	// MaxAttempts is the number of attempts for transient failures. Default: 3
	MaxAttempts int
	// BackoffBase is the wait after the first failed attempt; it doubles on
	// every further failure. Default: 1s
	BackoffBase time.Duration
	// Nameservers, when set, are queried directly ("8.8.8.8", "1.1.1.1:53")
	// instead of the system resolver.
	Nameservers []string
	// SuggestTypos fills Outcome.Suggestion for near misses of major
	// providers when the lookup fails. It never changes the status.
	// Default: true
	SuggestTypos bool
	// Lookup replaces the lookup backend. Intended for testing.
	Lookup MXLookupFunc
}

func defaultDNSOptions() DNSOptions {
	return DNSOptions{
		Timeout:      5 * time.Second,
		MaxAttempts:  3,
		BackoffBase:  time.Second,
		SuggestTypos: true,
	}
}

// SMTPOptions configures the RCPT probe stage. Every field is optional.
type SMTPOptions struct {
	// HeloDomain is sent in EHLO/HELO. Default: "localhost"
	HeloDomain string
	// MailFrom is the sender of the real-recipient probe.
	// Default: "your-email@example.com"
	MailFrom string
	// Port is the SMTP port. Default: "25"
	Port string
	// ConnectTimeout is the maximum time for the TCP connect. Default: 5s
	ConnectTimeout time.Duration
	// SessionTimeout bounds a whole SMTP dialogue. Default: 10s
	SessionTimeout time.Duration
	// ProxyURL routes probes through a SOCKS5 proxy, e.g. "socks5://127.0.0.1:1080".
	ProxyURL string
	// RateLimit caps new SMTP sessions per second across all workers.
	// Zero means unlimited.
	RateLimit float64
	// Burst is the rate limiter burst. Default: 1
	Burst int
	// Dial replaces the TCP dialer. Intended for testing.
	Dial func(ctx context.Context, network, address string) (net.Conn, error)
}

func defaultSMTPOptions() SMTPOptions {
	return SMTPOptions{
		HeloDomain:     "localhost",
		MailFrom:       "your-email@example.com",
		Port:           "25",
		ConnectTimeout: 5 * time.Second,
		SessionTimeout: 10 * time.Second,
		Burst:          1,
	}
}

// CatchAllOptions configures catch-all detection.
type CatchAllOptions struct {
	// MailFrom is the sender for ordinary domains. Default: "test@example.com"
	MailFrom string
	// GmailFrom is the sender used for gmail.com. Default: "test@gmail.com"
	GmailFrom string
}

// BatchOptions configures RunAll.
type BatchOptions struct {
	// Workers is the number of concurrent pipelines. Default: 50
	Workers int
	// Progress, if set, is called from a single goroutine after every
	// completed address with a strictly increasing done count.
	Progress func(done, total int)
}

func defaultBatchOptions() BatchOptions {
	return BatchOptions{Workers: 50}
}
