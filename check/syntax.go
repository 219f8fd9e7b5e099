package check

import (
	"context"

	"github.com/optimode/mailprobe/internal/parse"
	"github.com/optimode/mailprobe/types"
)

// IsSyntacticallyValid reports whether address has the shape
// local@label.label[.label...] with a local part of [A-Za-z0-9_.+-] and
// labels of [A-Za-z0-9-]. It is pure: no network, no side effects.
func IsSyntacticallyValid(address string) bool {
	return parse.Matches(address)
}

// SyntaxChecker is the first, offline stage of the pipeline.
type SyntaxChecker struct{}

func NewSyntaxChecker() *SyntaxChecker {
	return &SyntaxChecker{}
}

func (c *SyntaxChecker) Check(_ context.Context, t *Target) types.CheckResult {
	level := types.LevelSyntax

	if t.Email.Raw == "" {
		return types.CheckResult{Level: level, Passed: false, Details: "empty email address"}
	}
	if !t.Email.Valid {
		return types.CheckResult{Level: level, Passed: false, Details: "invalid email syntax"}
	}
	return types.CheckResult{Level: level, Passed: true, Details: "syntax ok"}
}
