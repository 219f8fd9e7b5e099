package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailprobe/internal/parse"
)

func TestNewEmail_ASCII(t *testing.T) {
	e := parse.NewEmail("User.Name+tag@Sub.Example.com")
	assert.True(t, e.Valid)
	assert.Equal(t, "User.Name+tag", e.Local)
	assert.Equal(t, "sub.example.com", e.Domain)
	assert.Equal(t, "sub.example.com", e.DomainUnicode)
}

func TestNewEmail_WhitespaceRejected(t *testing.T) {
	e := parse.NewEmail("  user@example.com  ")
	assert.False(t, e.Valid)
	assert.Equal(t, "  user@example.com  ", e.Raw)
	assert.Empty(t, e.Domain)
}

func TestNewEmail_Invalid(t *testing.T) {
	tests := []string{
		"",
		"noatsign",
		"@nodomain.com",
		"nolocal@",
		"user@@example.com",
		"user@example.",
		"user@.example.com",
		"user@localhost",
		"a@b@example.com",
		"user name@example.com",
	}
	for _, raw := range tests {
		e := parse.NewEmail(raw)
		assert.False(t, e.Valid, "expected invalid for %q", raw)
		assert.Empty(t, e.Local, "local must stay empty for %q", raw)
		assert.Empty(t, e.Domain, "domain must stay empty for %q", raw)
	}
}

func TestNewEmail_PunycodeDisplay(t *testing.T) {
	e := parse.NewEmail("user@xn--mnchen-3ya.de")
	assert.True(t, e.Valid)
	assert.Equal(t, "xn--mnchen-3ya.de", e.Domain)
	assert.Equal(t, "münchen.de", e.DomainUnicode)
}

func TestNewEmail_UnicodeDomainRejected(t *testing.T) {
	assert.False(t, parse.NewEmail("user@münchen.de").Valid)
}

func TestMatches(t *testing.T) {
	assert.True(t, parse.Matches("a_b-c.d+e@x-y.example.org"))
	assert.False(t, parse.Matches("a_b@x_y.example.org"))
}
