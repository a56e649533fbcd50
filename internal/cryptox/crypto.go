// Package cryptox hashes console and student passwords with argon2id.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/dmitrijs2005/tutorsync/internal/common"
	"golang.org/x/crypto/argon2"
)

const saltSize = 16

var ErrMalformedHash = errors.New("malformed password hash")

// DeriveKey stretches password with salt using argon2id (t=1, 64MiB, 4 lanes).
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier returns sha256(key) so the derived key itself is never stored.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// HashPassword returns "<salt hex>$<verifier hex>".
func HashPassword(password string) string {
	salt := common.GenerateRandByteArray(saltSize)
	return hashWithSalt(password, salt)
}

func hashWithSalt(password string, salt []byte) string {
	key := DeriveKey([]byte(password), salt)
	defer common.WipeByteArray(key)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(MakeVerifier(key))
}

// VerifyPassword reports whether password matches a HashPassword result.
func VerifyPassword(password, encoded string) (bool, error) {
	saltHex, verifierHex, ok := strings.Cut(encoded, "$")
	if !ok {
		return false, ErrMalformedHash
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := hex.DecodeString(verifierHex)
	if err != nil {
		return false, ErrMalformedHash
	}

	key := DeriveKey([]byte(password), salt)
	defer common.WipeByteArray(key)

	return subtle.ConstantTimeCompare(MakeVerifier(key), want) == 1, nil
}
