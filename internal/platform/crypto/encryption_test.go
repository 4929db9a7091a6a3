package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptRoundTripWithHexKey(t *testing.T) {
	svc, err := New(strings.Repeat("ab", 32))
	require.NoError(t, err)

	sealed, err := svc.EncryptString(`{"account":"amy"}`)
	require.NoError(t, err)
	require.NotContains(t, sealed, "amy")

	plain, err := svc.DecryptString(sealed)
	require.NoError(t, err)
	require.Equal(t, `{"account":"amy"}`, plain)
}

func TestNewRejectsShortKey(t *testing.T) {
	_, err := New("short")
	require.Error(t, err)
}

func TestDeriveIsDeterministicPerInfo(t *testing.T) {
	a, err := Derive("secret", "session")
	require.NoError(t, err)
	b, err := Derive("secret", "session")
	require.NoError(t, err)
	c, err := Derive("secret", "other")
	require.NoError(t, err)

	sealed, err := a.EncryptString("payload")
	require.NoError(t, err)

	plain, err := b.DecryptString(sealed)
	require.NoError(t, err)
	require.Equal(t, "payload", plain)

	_, err = c.DecryptString(sealed)
	require.Error(t, err)
}

func TestDecryptRejectsTamperedInput(t *testing.T) {
	svc, err := Derive("secret", "session")
	require.NoError(t, err)

	_, err = svc.DecryptString("AAAA")
	require.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = svc.DecryptString("!!not-base64!!")
	require.Error(t, err)
}
