package check

import (
	"github.com/optimode/mailprobe/internal/parse"
	"github.com/optimode/mailprobe/types"
)

// Target carries one address through a single pipeline run.
// The DNS stage fills MX; later stages read it. A Target is never shared
// between runs.
type Target struct {
	Email parse.Email
	MX    []types.MXRecord
}

// NewTarget parses raw into a Target.
func NewTarget(raw string) *Target {
	return &Target{Email: parse.NewEmail(raw)}
}

// PrimaryMX returns the lowest-preference exchanger, or "" before the DNS
// stage has run.
func (t *Target) PrimaryMX() string {
	if len(t.MX) == 0 {
		return ""
	}
	return t.MX[0].Host
}
