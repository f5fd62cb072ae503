// Package crypt provides AES-GCM authenticated encryption for values the
// console keeps at rest, such as the persisted admin token.
//
// Ciphertext is base64url-encoded and carries its random nonce as a prefix,
// so a single string can be written to a file or a Redis key.
//
//	box := crypt.New(config.AppKey())
//	enc, err := box.Encrypt(token)
//	plain, err := box.Decrypt(enc)
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrDecrypt is returned when decryption or authentication fails.
var ErrDecrypt = errors.New("crypt: decryption failed")

// ErrNoKey is returned when the box was built from an empty secret.
var ErrNoKey = errors.New("crypt: APP_KEY not configured")

// Box seals and opens values with a key derived from a secret.
type Box struct {
	key []byte
}

// New derives a 32-byte AES-256 key from secret via SHA-256.
func New(secret string) *Box {
	if secret == "" {
		return &Box{}
	}
	h := sha256.Sum256([]byte(secret))
	return &Box{key: h[:]}
}

func (b *Box) gcm() (cipher.AEAD, error) {
	if len(b.key) == 0 {
		return nil, ErrNoKey
	}
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, fmt.Errorf("crypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: new GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt encrypts plaintext and returns base64url(nonce || ciphertext || tag).
func (b *Box) Encrypt(plaintext string) (string, error) {
	gcm, err := b.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a string produced by Encrypt.
func (b *Box) Decrypt(encoded string) (string, error) {
	gcm, err := b.gcm()
	if err != nil {
		return "", err
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecrypt
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", ErrDecrypt
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
