package driven

import "errors"

// ErrCipherNotConfigured is returned by SecretCipher operations when no master
// secret has been configured (set STUDYDIGEST_ENCRYPTION_KEY).
var ErrCipherNotConfigured = errors.New("encryption key not configured: set STUDYDIGEST_ENCRYPTION_KEY")

// ErrDecryption is returned when a stored blob cannot be decoded or fails
// authentication.
var ErrDecryption = errors.New("credential decryption failed")

// SecretCipher defines the driven port for authenticated encryption of
// credentials at rest.
type SecretCipher interface {
	// Encrypt returns an opaque, text-safe blob. Encrypting the same plaintext
	// twice yields different blobs.
	Encrypt(plaintext string) (string, error)

	// Decrypt reverses Encrypt. Returns an error wrapping ErrDecryption when
	// the blob is corrupted, truncated or was sealed under another key.
	Decrypt(blob string) (string, error)
}
