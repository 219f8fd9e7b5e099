package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"

	"github.com/optimode/mailprobe/types"
)

// nameserverLookup sends MX queries straight to a fixed list of
// nameservers instead of the system resolver.
type nameserverLookup struct {
	servers []string
	client  *dns.Client
}

// NewNameservers returns a Lookuper querying the given nameservers
// ("8.8.8.8", "1.1.1.1:53", "[2606:4700::1111]:53"). Servers are tried in
// order within one lookup until one gives a definitive answer.
func NewNameservers(servers []string) (Lookuper, error) {
	if len(servers) == 0 {
		return nil, errors.New("resolver: no nameservers given")
	}
	addrs := make([]string, 0, len(servers))
	for _, s := range servers {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		addrs = append(addrs, withPort(s))
	}
	if len(addrs) == 0 {
		return nil, errors.New("resolver: no nameservers given")
	}
	return &nameserverLookup{
		servers: addrs,
		client:  &dns.Client{Net: "udp"},
	}, nil
}

func withPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(strings.Trim(server, "[]"), "53")
}

func (n *nameserverLookup) LookupMX(ctx context.Context, domain string) ([]types.MXRecord, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	m.RecursionDesired = true
	m.SetEdns0(4096, false)

	var errs []error
	for _, server := range n.servers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		in, _, err := n.client.ExchangeContext(ctx, m, server)
		if err != nil {
			errs = append(errs, fmt.Errorf("query %s: %w", server, err))
			continue
		}
		switch in.Rcode {
		case dns.RcodeSuccess:
			return answerRecords(domain, in)
		case dns.RcodeNameError:
			return nil, fmt.Errorf("%w for %s: NXDOMAIN from %s", ErrNotFound, domain, server)
		default:
			errs = append(errs, fmt.Errorf("query %s: %s", server, dns.RcodeToString[in.Rcode]))
		}
	}
	return nil, errors.Join(errs...)
}

func answerRecords(domain string, in *dns.Msg) ([]types.MXRecord, error) {
	mxs := make([]*net.MX, 0, len(in.Answer))
	for _, rr := range in.Answer {
		if mx, ok := rr.(*dns.MX); ok {
			mxs = append(mxs, &net.MX{Host: mx.Mx, Pref: mx.Preference})
		}
	}
	return convert(domain, mxs)
}
