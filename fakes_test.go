package mailprobe_test

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/optimode/mailprobe"
)

// fakeDNS serves MX records from a map; unknown domains are authoritative
// negatives and domains in flaky fail transiently.
type fakeDNS struct {
	zones   map[string][]mailprobe.MXRecord
	flaky   map[string]bool
	lookups atomic.Int64
}

func (d *fakeDNS) lookup(_ context.Context, domain string) ([]mailprobe.MXRecord, error) {
	d.lookups.Add(1)
	if d.flaky[domain] {
		return nil, errors.New("i/o timeout")
	}
	recs, ok := d.zones[domain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", mailprobe.ErrNoMXRecords, domain)
	}
	return recs, nil
}

// fakeMTA is a set of in-memory SMTP servers reached over net.Pipe.
// Hosts in catchAll accept every recipient, hosts in down refuse the
// connection, and everywhere else only mailboxes are accepted.
type fakeMTA struct {
	mailboxes map[string]bool
	catchAll  map[string]bool
	down      map[string]bool

	mu       sync.Mutex
	rcpts    []string
	sessions atomic.Int64
}

func (m *fakeMTA) dial(_ context.Context, _, address string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	if m.down[host] {
		return nil, fmt.Errorf("dial tcp %s: connection refused", address)
	}
	m.sessions.Add(1)
	client, server := net.Pipe()
	go m.serve(server, host)
	return client, nil
}

func (m *fakeMTA) serve(conn net.Conn, host string) {
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	r := bufio.NewReader(conn)
	_, _ = fmt.Fprintf(conn, "220 %s ESMTP\r\n", host)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimSpace(line)
		upper := strings.ToUpper(cmd)

		switch {
		case strings.HasPrefix(upper, "EHLO"), strings.HasPrefix(upper, "HELO"):
			_, _ = fmt.Fprintf(conn, "250 %s\r\n", host)
		case strings.HasPrefix(upper, "MAIL FROM"):
			_, _ = fmt.Fprint(conn, "250 2.1.0 OK\r\n")
		case strings.HasPrefix(upper, "RCPT TO"):
			rcpt := strings.TrimSuffix(strings.TrimPrefix(cmd[len("RCPT TO:"):], "<"), ">")
			m.mu.Lock()
			m.rcpts = append(m.rcpts, rcpt)
			m.mu.Unlock()
			if m.catchAll[host] || m.mailboxes[rcpt] {
				_, _ = fmt.Fprint(conn, "250 2.1.5 OK\r\n")
			} else {
				_, _ = fmt.Fprint(conn, "550 5.1.1 No such user\r\n")
			}
		case strings.HasPrefix(upper, "QUIT"):
			_, _ = fmt.Fprint(conn, "221 2.0.0 Bye\r\n")
			return
		default:
			_, _ = fmt.Fprint(conn, "500 5.5.2 Unknown command\r\n")
		}
	}
}

func (m *fakeMTA) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.rcpts...)
}

func mx(host string) []mailprobe.MXRecord {
	return []mailprobe.MXRecord{{Host: host, Pref: 10}}
}

// newWorld returns a DNS and MTA pair for the example.test family of domains.
func newWorld() (*fakeDNS, *fakeMTA) {
	dns := &fakeDNS{
		zones: map[string][]mailprobe.MXRecord{
			"example.test":  {{Host: "mx2.example.test", Pref: 20}, {Host: "mx1.example.test", Pref: 10}},
			"catchall.test": mx("mx.catchall.test"),
			"down.test":     mx("mx.down.test"),
		},
		flaky: map[string]bool{"flaky.test": true},
	}
	mta := &fakeMTA{
		mailboxes: map[string]bool{"alice@example.test": true},
		catchAll:  map[string]bool{"mx.catchall.test": true},
		down:      map[string]bool{"mx.down.test": true},
	}
	return dns, mta
}

// fullValidator wires every stage to the fakes.
func fullValidator(dns *fakeDNS, mta *fakeMTA) *mailprobe.Validator {
	return mailprobe.New().
		WithDNS(mailprobe.DNSOptions{
			MaxAttempts: 2,
			BackoffBase: time.Millisecond,
			Lookup:      dns.lookup,
		}).
		WithSMTP(mailprobe.SMTPOptions{
			HeloDomain: "probe.test",
			MailFrom:   "verify@probe.test",
			Dial:       mta.dial,
		}).
		WithCatchAll()
}
