package parse

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// addressPattern is the accepted address shape: a local part of
// [A-Za-z0-9_.+-], one @, and at least two dot-separated labels of
// [A-Za-z0-9-]. The pattern is anchored; surrounding whitespace is rejected.
var addressPattern = regexp.MustCompile(`^[A-Za-z0-9_.+-]+@[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)+$`)

// Email is the internal representation of a parsed email address.
// The check/ packages receive this as parameter.
type Email struct {
	Raw           string // the original input, untouched
	Local         string // the part before @
	Domain        string // the part after @, lower-cased (for DNS/SMTP)
	DomainUnicode string // the part after @, Unicode display form
	Valid         bool   // false if Raw does not match the address pattern
}

// Matches reports whether raw has an acceptable address shape.
func Matches(raw string) bool {
	return addressPattern.MatchString(raw)
}

// NewEmail parses raw. Local and Domain are only populated when raw
// matches the address pattern; otherwise Valid=false and only Raw is set.
func NewEmail(raw string) Email {
	if !Matches(raw) {
		return Email{Raw: raw}
	}

	// The pattern guarantees exactly one @ with non-empty sides.
	at := strings.IndexByte(raw, '@')
	domain := strings.ToLower(raw[at+1:])

	return Email{
		Raw:           raw,
		Local:         raw[:at],
		Domain:        domain,
		DomainUnicode: displayDomain(domain),
		Valid:         true,
	}
}

// displayDomain decodes Punycode labels (xn--mnchen-3ya.de → münchen.de)
// for reports. Domains that fail IDNA decoding are shown as-is.
func displayDomain(domain string) string {
	if !strings.Contains(domain, "xn--") {
		return domain
	}
	u, err := idna.Display.ToUnicode(domain)
	if err != nil {
		return domain
	}
	return u
}
