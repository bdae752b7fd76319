package tokens

import (
	"strings"

	"github.com/google/uuid"
)

// Prefix starts every application token.
const Prefix = "app-"

// Issuer mints application tokens.
type Issuer interface {
	Issue() string
}

// RandomIssuer mints "app-" plus 32 hex chars taken from a random (v4) UUID.
type RandomIssuer struct{}

func (RandomIssuer) Issue() string {
	return Prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Func adapts a plain function to Issuer.
type Func func() string

func (f Func) Issue() string {
	return f()
}

// Sequence returns an Issuer handing out the given tokens in order, then
// falling back to RandomIssuer.
func Sequence(tokens ...string) Issuer {
	next := 0
	return Func(func() string {
		if next < len(tokens) {
			tok := tokens[next]
			next++
			return tok
		}
		return RandomIssuer{}.Issue()
	})
}

// Valid reports whether s looks like a token minted by RandomIssuer.
func Valid(s string) bool {
	if !strings.HasPrefix(s, Prefix) || len(s) != len(Prefix)+32 {
		return false
	}
	for _, r := range s[len(Prefix):] {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}
