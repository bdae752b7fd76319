package tokens

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomIssuerFormat(t *testing.T) {
	tok := RandomIssuer{}.Issue()
	require.Len(t, tok, len(Prefix)+32)
	require.True(t, Valid(tok), tok)
}

func TestRandomIssuerDistinct(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	issuer := RandomIssuer{}
	for i := 0; i < 1000; i++ {
		tok := issuer.Issue()
		_, dup := seen[tok]
		require.False(t, dup, "duplicate token %s", tok)
		seen[tok] = struct{}{}
	}
}

func TestSequenceThenRandom(t *testing.T) {
	issuer := Sequence("app-a", "app-b")
	require.Equal(t, "app-a", issuer.Issue())
	require.Equal(t, "app-b", issuer.Issue())
	require.True(t, Valid(issuer.Issue()))
}

func TestValid(t *testing.T) {
	require.False(t, Valid("app-123"))
	require.False(t, Valid("xyz-0123456789abcdef0123456789abcdef"))
	require.False(t, Valid("app-0123456789ABCDEF0123456789abcdef"))
	require.True(t, Valid("app-0123456789abcdef0123456789abcdef"))
}
