package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateBody(t *testing.T) {
	got, err := ValidateBody("  hello ")
	require.NoError(t, err)
	require.Equal(t, "hello", got)

	_, err = ValidateBody("")
	require.ErrorIs(t, err, ErrEmptyBody)
	_, err = ValidateBody("   ")
	require.ErrorIs(t, err, ErrEmptyBody)
	_, err = ValidateBody("\t\n")
	require.ErrorIs(t, err, ErrEmptyBody)

	_, err = ValidateBody(strings.Repeat("x", MaxBodyBytes+1))
	require.ErrorIs(t, err, ErrBodyTooLarge)

	got, err = ValidateBody(strings.Repeat("x", MaxBodyBytes))
	require.NoError(t, err)
	require.Len(t, got, MaxBodyBytes)
}
