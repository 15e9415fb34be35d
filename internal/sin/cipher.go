package sin

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const (
	keySize = 32
	ivSize  = 16
	tagSize = 16
)

// ErrIntegrity reports an envelope that failed authentication or decoding.
var ErrIntegrity = errors.New("sin: ciphertext integrity check failed")

// Cipher seals identifiers with AES-256-GCM using a 16-byte IV.
type Cipher struct {
	aead cipher.AEAD
	rand io.Reader
}

// NewCipher decodes a base64 key and prepares the AEAD.
func NewCipher(keyB64 string) (*Cipher, error) {
	if keyB64 == "" {
		return nil, errors.New("sin: encryption key is required")
	}
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("sin: encryption key is not valid base64: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("sin: encryption key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead, rand: rand.Reader}, nil
}

// Seal encrypts plaintext under a fresh random IV.
func (c *Cipher) Seal(plaintext string) (Envelope, error) {
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return Envelope{}, fmt.Errorf("sin: generate iv: %w", err)
	}
	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	content, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]
	return Envelope{
		IV:      base64.StdEncoding.EncodeToString(iv),
		Content: base64.StdEncoding.EncodeToString(content),
		AuthTag: base64.StdEncoding.EncodeToString(tag),
	}, nil
}

// Open authenticates and decrypts env. Any failure yields ErrIntegrity.
func (c *Cipher) Open(env Envelope) (string, error) {
	iv, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil || len(iv) != ivSize {
		return "", ErrIntegrity
	}
	content, err := base64.StdEncoding.DecodeString(env.Content)
	if err != nil {
		return "", ErrIntegrity
	}
	tag, err := base64.StdEncoding.DecodeString(env.AuthTag)
	if err != nil || len(tag) != tagSize {
		return "", ErrIntegrity
	}
	plain, err := c.aead.Open(nil, iv, append(content, tag...), nil)
	if err != nil {
		return "", ErrIntegrity
	}
	return string(plain), nil
}
