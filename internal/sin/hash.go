package sin

import (
	"crypto/sha512"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashIterations = 1000
	hashKeyLen     = 64
)

// SearchHash derives the deterministic lookup hash for plaintext.
func SearchHash(plaintext, salt string) string {
	return hex.EncodeToString(pbkdf2.Key([]byte(plaintext), []byte(salt), hashIterations, hashKeyLen, sha512.New))
}
