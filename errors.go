package mailprobe

import (
	"errors"

	"github.com/optimode/mailprobe/internal/resolver"
)

var (
	// ErrInvalidSMTPOptions is returned when WithSMTP is given a MailFrom
	// that is not a valid address or a ProxyURL that cannot be used.
	ErrInvalidSMTPOptions = errors.New("mailprobe: invalid SMTPOptions")

	// ErrCatchAllRequiresSMTP is returned when WithCatchAll is configured
	// without WithSMTP.
	ErrCatchAllRequiresSMTP = errors.New("mailprobe: catch-all detection requires WithSMTP")

	// ErrInvalidConcurrency is returned by RunAll for a negative worker count.
	ErrInvalidConcurrency = errors.New("mailprobe: workers must not be negative")
)

// ErrNoMXRecords is the error an MXLookupFunc wraps for an authoritative
// negative answer (NXDOMAIN, no MX records, null MX).
var ErrNoMXRecords = resolver.ErrNotFound
