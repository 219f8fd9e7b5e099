// Package mailprobe estimates whether an email address is deliverable
// without sending a message. Each address goes through up to four stages:
// syntax, MX lookup, an SMTP RCPT probe of the real recipient and a
// catch-all probe of a synthetic one.
//
// Syntax only:
//
//	outcome, err := mailprobe.New().Validate(ctx, "user@example.com")
//
// Full pipeline over a batch:
//
//	outcomes, err := mailprobe.New().
//	    WithDNS(mailprobe.DNSOptions{Nameservers: []string{"8.8.8.8", "1.1.1.1"}}).
//	    WithSMTP(mailprobe.SMTPOptions{HeloDomain: "myapp.com"}).
//	    WithCatchAll().
//	    RunAll(ctx, addresses, mailprobe.BatchOptions{Workers: 50})
package mailprobe

import "github.com/optimode/mailprobe/types"

// Re-exports from the types package so that consumers don't need to import
// it directly.
type (
	CheckResult = types.CheckResult
	CheckLevel  = types.CheckLevel
	Outcome     = types.Outcome
	Status      = types.Status
	MXRecord    = types.MXRecord
)

const (
	LevelSyntax   = types.LevelSyntax
	LevelDNS      = types.LevelDNS
	LevelSMTP     = types.LevelSMTP
	LevelCatchAll = types.LevelCatchAll
)

const (
	StatusValid            = types.StatusValid
	StatusInvalidSyntax    = types.StatusInvalidSyntax
	StatusNoMailServer     = types.StatusNoMailServer
	StatusConnectionFailed = types.StatusConnectionFailed
	StatusCatchAll         = types.StatusCatchAll
)
