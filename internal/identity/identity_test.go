package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func hexID(c byte) string { return strings.Repeat(string(c), 24) }

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(hexID('a')))
	require.NoError(t, Validate("507f1f77bcf86cd799439011"))

	for _, bad := range []string{
		"",
		"u1",
		strings.Repeat("a", 23),
		strings.Repeat("a", 25),
		strings.Repeat("A", 24), // uppercase
		strings.Repeat("g", 24), // not hex
		"507f1f77bcf86cd79943901 ", // trailing space
	} {
		require.ErrorIs(t, Validate(bad), ErrInvalidID, "id %q", bad)
	}
}

func TestCanonicalSymmetric(t *testing.T) {
	a, b := hexID('a'), hexID('b')

	p1, err := Canonical(a, b)
	require.NoError(t, err)
	p2, err := Canonical(b, a)
	require.NoError(t, err)

	require.Equal(t, p1, p2)
	require.Equal(t, p1.Key(), p2.Key())
	require.Equal(t, a+KeySep+b, p1.Key())
}

func TestCanonicalRejectsSelfPair(t *testing.T) {
	a := hexID('a')
	_, err := Canonical(a, a)
	require.ErrorIs(t, err, ErrSelfPair)
}

func TestCanonicalRejectsInvalid(t *testing.T) {
	_, err := Canonical("nope", hexID('b'))
	require.ErrorIs(t, err, ErrInvalidID)
	_, err = Canonical(hexID('a'), "nope")
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestPairHelpers(t *testing.T) {
	a, b := hexID('a'), hexID('b')
	p, err := Canonical(b, a)
	require.NoError(t, err)

	require.True(t, p.Contains(a))
	require.True(t, p.Contains(b))
	require.False(t, p.Contains(hexID('c')))
	require.Equal(t, b, p.Other(a))
	require.Equal(t, a, p.Other(b))
}
