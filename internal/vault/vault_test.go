package vault

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	v, err := New("correct horse battery staple")
	require.NoError(t, err)

	for _, plain := range []string{"", "api-key-123", "secret with spaces", "非ASCII密钥"} {
		ct, err := v.Encrypt(plain)
		require.NoError(t, err)
		got, err := v.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	v, err := New("passphrase")
	require.NoError(t, err)

	a, err := v.Encrypt("same input")
	require.NoError(t, err)
	b, err := v.Encrypt("same input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRawKeyAccepted(t *testing.T) {
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)

	v, err := New(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	ct, err := v.Encrypt("payload")
	require.NoError(t, err)
	got, err := v.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "payload", got)
}

func TestDecryptWithWrongKey(t *testing.T) {
	a, err := New("key-a")
	require.NoError(t, err)
	b, err := New("key-b")
	require.NoError(t, err)

	ct, err := a.Encrypt("secret")
	require.NoError(t, err)
	_, err = b.Decrypt(ct)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptGarbage(t *testing.T) {
	v, err := New("key")
	require.NoError(t, err)

	for _, ct := range []string{"", "not base64!!", base64.URLEncoding.EncodeToString([]byte("short"))} {
		_, err := v.Decrypt(ct)
		assert.ErrorIs(t, err, ErrDecrypt)
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	_, err := New("   ")
	assert.Error(t, err)
}
