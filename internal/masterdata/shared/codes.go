package shared

import (
	"fmt"
	"strings"
	"time"
)

// MaxCodeAttempts bounds the retries after a generated code collides.
const MaxCodeAttempts = 5

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// CodeGenerator builds reference codes of the form PREFIX-NNNNNN where the
// digits are the last six of the current unix time in milliseconds.
type CodeGenerator struct {
	Prefix string
	Now    Clock
}

// Next returns a fresh code.
func (g CodeGenerator) Next() string {
	now := g.Now
	if now == nil {
		now = time.Now
	}
	return fmt.Sprintf("%s-%06d", g.Prefix, now().UnixMilli()%1_000_000)
}

// WithAttempt suffixes base for the nth retry after a code collision. The
// first attempt uses base unchanged.
func WithAttempt(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}

// NameKey lowercases a trimmed reference name. It matches the lower() the
// unique name indexes use, so Go-side lookups agree with the database.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
