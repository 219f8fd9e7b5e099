// Package types contains the shared types for mailprobe.
// This package does not import anything from other mailprobe packages
// to avoid circular imports.
package types

// CheckLevel identifies a pipeline stage.
type CheckLevel = string

const (
	LevelSyntax   CheckLevel = "syntax"
	LevelDNS      CheckLevel = "dns"
	LevelSMTP     CheckLevel = "smtp"
	LevelCatchAll CheckLevel = "catchall"
)

// Status is the terminal classification of one address.
type Status string

const (
	StatusValid            Status = "valid"
	StatusInvalidSyntax    Status = "invalid_syntax"
	StatusNoMailServer     Status = "no_mail_server"
	StatusConnectionFailed Status = "connection_failed"
	StatusCatchAll         Status = "catch_all"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{
	StatusValid,
	StatusInvalidSyntax,
	StatusNoMailServer,
	StatusConnectionFailed,
	StatusCatchAll,
}

var statusLabels = map[Status]string{
	StatusValid:            "Valid",
	StatusInvalidSyntax:    "Invalid syntax",
	StatusNoMailServer:     "No MX records found",
	StatusConnectionFailed: "Cannot connect to mail server",
	StatusCatchAll:         "Domain has catch-all enabled",
}

// Label returns the human readable report text for the status.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// StatusForLevel returns the status an outcome gets when the given level fails.
func StatusForLevel(level CheckLevel) Status {
	switch level {
	case LevelSyntax:
		return StatusInvalidSyntax
	case LevelDNS:
		return StatusNoMailServer
	case LevelSMTP:
		return StatusConnectionFailed
	case LevelCatchAll:
		return StatusCatchAll
	}
	return StatusConnectionFailed
}

// MXRecord is one mail exchanger of a domain. Host has no trailing dot.
type MXRecord struct {
	Host string `json:"host"`
	Pref uint16 `json:"pref"`
}

// ProbeResult is the RCPT TO reply of one SMTP session.
type ProbeResult struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Accepted reports whether the recipient was accepted (250 or 251).
func (p ProbeResult) Accepted() bool {
	return p.Code == 250 || p.Code == 251
}

// CheckResult is the outcome of a single pipeline stage.
type CheckResult struct {
	Level      CheckLevel `json:"level"`
	Passed     bool       `json:"passed"`
	Details    string     `json:"details,omitempty"`
	MXHost     string     `json:"mxHost,omitempty"`
	SMTPCode   int        `json:"smtpCode,omitempty"`
	Suggestion string     `json:"suggestion,omitempty"`
}

// Outcome is the single result produced for one input address.
type Outcome struct {
	Address    string        `json:"address"`
	Status     Status        `json:"status"`
	Detail     string        `json:"detail"`
	MXHost     string        `json:"mxHost,omitempty"`
	SMTPCode   int           `json:"smtpCode,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Checks     []CheckResult `json:"checks"`
}

// Valid reports whether every configured stage passed.
func (o Outcome) Valid() bool { return o.Status == StatusValid }

// Tuple returns the (address, status, detail) triple consumed by report writers.
func (o Outcome) Tuple() (string, Status, string) {
	return o.Address, o.Status, o.Detail
}

// CheckFor returns the CheckResult for the given level, if that stage ran.
func (o Outcome) CheckFor(level CheckLevel) (CheckResult, bool) {
	for _, c := range o.Checks {
		if c.Level == level {
			return c, true
		}
	}
	return CheckResult{}, false
}
