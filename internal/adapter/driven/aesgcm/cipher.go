// Package aesgcm implements the SecretCipher port with AES-256-GCM.
package aesgcm

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"sync"

	"github.com/ericfisherdev/studydigest/internal/domain/port/driven"
)

// Blob layout: salt · iv · tag · ciphertext, base64 encoded.
const (
	saltSize = 32
	ivSize   = 16
	tagSize  = 16
	headSize = saltSize + ivSize + tagSize
)

// Compile-time interface satisfaction check.
var _ driven.SecretCipher = (*Cipher)(nil)

// Cipher encrypts credentials under a key derived from a process-wide master
// secret. The key is SHA-256(master secret), computed on first use.
//
// The salt segment is random per blob but does not feed key derivation. It is
// authenticated as additional data, so altering it fails decryption like any
// other byte of the blob.
type Cipher struct {
	secret string

	once sync.Once
	aead cipher.AEAD
	err  error
}

// New creates a Cipher for the given master secret. An empty secret is
// accepted here; every Encrypt and Decrypt call then returns
// driven.ErrCipherNotConfigured.
func New(secret string) *Cipher {
	return &Cipher{secret: secret}
}

func (c *Cipher) init() (cipher.AEAD, error) {
	if c.secret == "" {
		return nil, driven.ErrCipherNotConfigured
	}

	c.once.Do(func() {
		key := sha256.Sum256([]byte(c.secret))

		block, err := aes.NewCipher(key[:])
		if err != nil {
			c.err = fmt.Errorf("aes.NewCipher: %w", err)
			return
		}
		c.aead, c.err = cipher.NewGCMWithNonceSize(block, ivSize)
		if c.err != nil {
			c.err = fmt.Errorf("cipher.NewGCMWithNonceSize: %w", c.err)
		}
	})

	return c.aead, c.err
}

// Encrypt seals plaintext with a fresh salt and IV.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	aead, err := c.init()
	if err != nil {
		return "", err
	}

	head := make([]byte, headSize)
	salt, iv := head[:saltSize], head[saltSize:saltSize+ivSize]
	if _, err := io.ReadFull(rand.Reader, head[:saltSize+ivSize]); err != nil {
		return "", fmt.Errorf("rand salt/iv: %w", err)
	}

	// Seal produces ciphertext || tag; the stored layout puts the tag first.
	sealed := aead.Seal(nil, iv, []byte(plaintext), salt)
	body, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]
	copy(head[saltSize+ivSize:], tag)

	return base64.StdEncoding.EncodeToString(append(head, body...)), nil
}

// Decrypt opens a blob produced by Encrypt.
func (c *Cipher) Decrypt(blob string) (string, error) {
	aead, err := c.init()
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode: %v", driven.ErrDecryption, err)
	}
	if len(data) < headSize {
		return "", fmt.Errorf("%w: blob too short (%d bytes)", driven.ErrDecryption, len(data))
	}

	salt := data[:saltSize]
	iv := data[saltSize : saltSize+ivSize]
	tag := data[saltSize+ivSize : headSize]
	body := data[headSize:]

	sealed := make([]byte, 0, len(body)+tagSize)
	sealed = append(sealed, body...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, iv, sealed, salt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", driven.ErrDecryption, err)
	}

	return string(plaintext), nil
}
