package check

import (
	"strings"

	"github.com/optimode/mailprobe/internal/levenshtein"
)

// knownProviders are domains worth suggesting when a lookup fails on a
// near miss (gmial.com, hotmial.com, ...).
var knownProviders = []string{
	"gmail.com", "googlemail.com",
	"yahoo.com", "yahoo.co.uk", "yahoo.fr", "yahoo.de",
	"outlook.com", "hotmail.com", "hotmail.co.uk", "live.com",
	"icloud.com", "me.com", "mac.com",
	"protonmail.com", "proton.me",
	"aol.com", "zoho.com",
	"yandex.com", "yandex.ru",
	"mail.com", "gmx.com", "gmx.net", "gmx.de",
	"fastmail.com",
}

// SuggestDomain returns the closest known provider within threshold edits
// of domain, or "" when domain is itself known or nothing is close enough.
func SuggestDomain(domain string, threshold int) string {
	domain = strings.ToLower(domain)
	best, bestDist := "", threshold+1

	for _, p := range knownProviders {
		if p == domain {
			return ""
		}
		if d := levenshtein.Distance(domain, p); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}
