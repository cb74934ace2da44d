package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
)

// Hash algorithms recorded in the stored settings.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmSHA256   = "sha256"
)

const (
	MinPasswordLength = 8

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// ValidatePassword enforces the minimum strength: at least eight characters
// with at least one letter and one digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !letter || !digit {
		return ErrWeakPassword
	}
	return nil
}

// NewSalt returns 16 random bytes, hex encoded.
func NewSalt() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword hashes password with salt using algorithm. An empty algorithm
// means the legacy SHA-256 digest of password+salt.
func HashPassword(algorithm, password, salt string) (string, error) {
	switch algorithm {
	case AlgorithmArgon2id:
		key := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
		return hex.EncodeToString(key), nil
	case AlgorithmSHA256, "":
		sum := sha256.Sum256([]byte(password + salt))
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("unknown password algorithm %q", algorithm)
	}
}

func verifyPassword(s Settings, password string) bool {
	hash, err := HashPassword(s.Algorithm, password, s.Salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hash), []byte(s.PasswordHash)) == 1
}
