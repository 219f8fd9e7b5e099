package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/optimode/mailprobe/types"
)

// systemLookup queries the operating system's configured resolver.
type systemLookup struct {
	r *net.Resolver
}

// NewSystem returns a Lookuper backed by the system resolver.
func NewSystem() Lookuper {
	return &systemLookup{r: &net.Resolver{}}
}

func (s *systemLookup) LookupMX(ctx context.Context, domain string) ([]types.MXRecord, error) {
	mxs, err := s.r.LookupMX(ctx, domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, fmt.Errorf("%w for %s: %v", ErrNotFound, domain, err)
		}
		return nil, err
	}
	return convert(domain, mxs)
}

func convert(domain string, mxs []*net.MX) ([]types.MXRecord, error) {
	out := make([]types.MXRecord, 0, len(mxs))
	for _, mx := range mxs {
		host := strings.TrimSuffix(mx.Host, ".")
		if host == "" {
			// Null MX (RFC 7505): the domain explicitly accepts no mail.
			continue
		}
		out = append(out, types.MXRecord{Host: host, Pref: mx.Pref})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, domain)
	}
	return out, nil
}
