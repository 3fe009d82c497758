package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrDecrypt is returned when ciphertext cannot be opened with the configured
// key. Callers treat it as "credentials invalid, reconnect required" rather
// than a fatal condition.
var ErrDecrypt = errors.New("vault: decrypt failed")

// Vault does symmetric encryption of opaque secret strings (exchange API
// keys) with one process-wide key. decrypt(encrypt(x)) == x for all x.
type Vault struct {
	aead cipher.AEAD
}

// New derives the AES-256 key from the configured secret: a base64 string
// decoding to exactly 32 bytes is used directly, anything else is hashed with
// SHA-256 so operators can configure a plain passphrase.
func New(secret string) (*Vault, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("vault: key cannot be empty")
	}
	var key []byte
	if raw, err := base64.StdEncoding.DecodeString(secret); err == nil && len(raw) == 32 {
		key = raw
	} else {
		sum := sha256.Sum256([]byte(secret))
		key = sum[:]
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: init gcm: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Encrypt seals plaintext with a random nonce and returns url-safe base64.
// Ciphertexts are not order-preserving: encrypting the same value twice
// yields different outputs.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("vault: nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Garbage input or a ciphertext produced under a
// different key returns ErrDecrypt.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	ns := v.aead.NonceSize()
	if len(raw) < ns {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}
	plain, err := v.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plain), nil
}
