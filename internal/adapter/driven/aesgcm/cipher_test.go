package aesgcm

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/studydigest/internal/domain/port/driven"
)

func TestCipher_RoundTrip(t *testing.T) {
	c := New("master-secret")

	for _, plaintext := range []string{
		"sk-or-v1-abc123",
		"",
		"ключ с юникодом ✓",
		string(make([]byte, 4096)),
	} {
		blob, err := c.Encrypt(plaintext)
		require.NoError(t, err)

		got, err := c.Decrypt(blob)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestCipher_EncryptIsRandomized(t *testing.T) {
	c := New("master-secret")

	a, err := c.Encrypt("sk-or-v1-abc123")
	require.NoError(t, err)
	b, err := c.Encrypt("sk-or-v1-abc123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCipher_BlobLayout(t *testing.T) {
	c := New("master-secret")

	blob, err := c.Encrypt("hello")
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)
	assert.Len(t, data, 32+16+16+len("hello"))
}

func TestCipher_TamperedByteFails(t *testing.T) {
	c := New("master-secret")

	blob, err := c.Encrypt("sk-or-v1-abc123")
	require.NoError(t, err)
	data, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)

	for i := range data {
		tampered := append([]byte(nil), data...)
		tampered[i] ^= 0x01

		got, err := c.Decrypt(base64.StdEncoding.EncodeToString(tampered))
		require.ErrorIs(t, err, driven.ErrDecryption, "byte %d", i)
		assert.Empty(t, got)
	}
}

func TestCipher_WrongKeyFails(t *testing.T) {
	blob, err := New("key-one").Encrypt("sk-or-v1-abc123")
	require.NoError(t, err)

	_, err = New("key-two").Decrypt(blob)
	assert.ErrorIs(t, err, driven.ErrDecryption)
}

func TestCipher_TruncatedBlobFails(t *testing.T) {
	c := New("master-secret")

	blob, err := c.Encrypt("sk-or-v1-abc123")
	require.NoError(t, err)
	data, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(data[:40]))
	assert.ErrorIs(t, err, driven.ErrDecryption)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(data[:len(data)-1]))
	assert.ErrorIs(t, err, driven.ErrDecryption)
}

func TestCipher_InvalidEncodingFails(t *testing.T) {
	_, err := New("master-secret").Decrypt("not base64 !!")
	assert.ErrorIs(t, err, driven.ErrDecryption)
}

func TestCipher_MissingSecret(t *testing.T) {
	c := New("")

	_, err := c.Encrypt("sk-or-v1-abc123")
	assert.ErrorIs(t, err, driven.ErrCipherNotConfigured)

	_, err = c.Decrypt("AAAA")
	assert.ErrorIs(t, err, driven.ErrCipherNotConfigured)
}
