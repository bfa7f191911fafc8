package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

const payloadPrefix = "v10"

// ErrInvalidPayload indicates a cookie value that could not be decoded or
// authenticated.
var ErrInvalidPayload = errors.New("invalid session payload")

// Payload is the plaintext carried inside the encrypted session cookie.
type Payload struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Codec seals and opens session cookie values with AES-256-GCM. The key is
// derived once from the configured secret and salt.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives the cookie key and prepares the AEAD cipher.
func NewCodec(secret, salt string) (*Codec, error) {
	if secret == "" || salt == "" {
		return nil, errors.New("session secret and salt must be provided")
	}

	key, err := scrypt.Key([]byte(secret), []byte(salt), 16384, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise gcm: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// Encrypt serialises the payload and seals it into a base64 cookie value.
// Layout: 3-byte version prefix, 12-byte nonce, ciphertext, 16-byte tag.
func (c *Codec) Encrypt(payload Payload) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nil, nonce, plaintext, nil)

	buf := make([]byte, 0, len(payloadPrefix)+len(nonce)+len(sealed))
	buf = append(buf, payloadPrefix...)
	buf = append(buf, nonce...)
	buf = append(buf, sealed...)

	return base64.StdEncoding.EncodeToString(buf), nil
}

// Decrypt opens a cookie value produced by Encrypt.
func (c *Codec) Decrypt(value string) (Payload, error) {
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return Payload{}, ErrInvalidPayload
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < len(payloadPrefix)+nonceSize+c.aead.Overhead() {
		return Payload{}, ErrInvalidPayload
	}
	if string(data[:len(payloadPrefix)]) != payloadPrefix {
		return Payload{}, ErrInvalidPayload
	}

	nonce := data[len(payloadPrefix) : len(payloadPrefix)+nonceSize]
	ciphertext := data[len(payloadPrefix)+nonceSize:]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Payload{}, ErrInvalidPayload
	}

	var payload Payload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return Payload{}, ErrInvalidPayload
	}

	return payload, nil
}
