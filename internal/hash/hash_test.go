package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	digest, err := HashPassword("password")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	require.NotEqual(t, "password", digest)

	require.True(t, CheckPassword(digest, "password"))
	require.False(t, CheckPassword(digest, "wrong_password"))
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	first, err := HashPassword("password")
	require.NoError(t, err)
	second, err := HashPassword("password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, CheckPassword(first, "password"))
	require.True(t, CheckPassword(second, "password"))
}

func TestCheckPasswordCrossReject(t *testing.T) {
	digest, err := HashPassword("password_one")
	require.NoError(t, err)
	other, err := HashPassword("password_two")
	require.NoError(t, err)

	require.False(t, CheckPassword(digest, "password_two"))
	require.False(t, CheckPassword(other, "password_one"))
}
