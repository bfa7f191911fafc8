package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(length int) string {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(err)
		}
		buf[i] = base36Alphabet[n.Int64()]
	}
	return string(buf)
}

// NewPostID returns a random 6-character alphanumeric post identifier.
func NewPostID() string {
	return randomBase36(6)
}

// NewCommentID returns a random 8-character alphanumeric comment identifier.
func NewCommentID() string {
	return randomBase36(8)
}

// NewSessionToken returns a 64-character hex session token.
func NewSessionToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// NewOTPCode returns a random 6-digit numeric one-time code.
func NewOTPCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

// HashOTP returns the hex sha256 digest used to store one-time codes at rest.
func HashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
