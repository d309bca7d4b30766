package vault

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	v, err := New("test-encryption-key")
	require.NoError(t, err)

	sealed, err := v.Seal("lnbits-admin-key-secret")
	require.NoError(t, err)
	require.NotContains(t, sealed, "lnbits-admin-key-secret")

	plain, err := v.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "lnbits-admin-key-secret", plain)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	v1, err := New("key-one")
	require.NoError(t, err)
	v2, err := New("key-two")
	require.NoError(t, err)

	sealed, err := v1.Seal("secret")
	require.NoError(t, err)

	_, err = v2.Open(sealed)
	require.ErrorIs(t, err, ErrDecryption)
}

func TestOpenRejectsGarbage(t *testing.T) {
	v, err := New("key")
	require.NoError(t, err)

	_, err = v.Open("not json")
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestNewRejectsEmptyKey(t *testing.T) {
	_, err := New("  ")
	require.ErrorIs(t, err, ErrInvalidKey)
}
