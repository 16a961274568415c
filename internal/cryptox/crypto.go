// Package cryptox implements the symmetric cipher used for every
// "encrypt key material with secret X" operation in the vault.
//
// Messages are sealed with AES-256-GCM under a key derived from the secret
// with argon2id. Every message carries its own random salt and nonce:
//
//	version(1) | salt(16) | nonce(12) | ciphertext+tag
//
// A wrong secret is detected by the GCM authentication tag and reported as
// ErrDecrypt, so an empty plaintext is never confused with a failure.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	formatVersion byte = 1

	saltSize  = 16
	nonceSize = 12
	keySize   = 32

	headerSize = 1 + saltSize + nonceSize
)

var (
	// ErrDecrypt is returned for a wrong secret, a tampered message or a
	// blob that is not in the expected format.
	ErrDecrypt = errors.New("decryption failed")

	// ErrEmptySecret is returned when encrypting or decrypting with an
	// empty secret.
	ErrEmptySecret = errors.New("empty secret")
)

// KDFParams are the argon2id cost parameters.
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultKDFParams matches the cost used for master keys across the client.
var DefaultKDFParams = KDFParams{Time: 1, Memory: 64 * 1024, Threads: 4}

// Cipher is the passphrase-based symmetric cipher contract.
type Cipher interface {
	Encrypt(plaintext, secret []byte) ([]byte, error)
	Decrypt(ciphertext, secret []byte) ([]byte, error)
}

// AESCipher is the AES-256-GCM + argon2id Cipher.
type AESCipher struct {
	params KDFParams
}

// NewAESCipher returns an AESCipher using p. Zero fields fall back to
// DefaultKDFParams.
func NewAESCipher(p KDFParams) *AESCipher {
	if p.Time == 0 {
		p.Time = DefaultKDFParams.Time
	}
	if p.Memory == 0 {
		p.Memory = DefaultKDFParams.Memory
	}
	if p.Threads == 0 {
		p.Threads = DefaultKDFParams.Threads
	}
	return &AESCipher{params: p}
}

// DeriveKey stretches secret with salt into a 32-byte AES key.
func DeriveKey(secret, salt []byte, p KDFParams) []byte {
	return argon2.IDKey(secret, salt, p.Time, p.Memory, p.Threads, keySize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext under secret. The output is self-describing and
// differs on every call even for identical inputs.
func (c *AESCipher) Encrypt(plaintext, secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	salt := common.GenerateRandByteArray(saltSize)
	nonce := common.GenerateRandByteArray(nonceSize)

	key := DeriveKey(secret, salt, c.params)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	header := make([]byte, 0, headerSize)
	header = append(header, formatVersion)
	header = append(header, salt...)
	header = append(header, nonce...)

	out := make([]byte, headerSize, headerSize+len(plaintext)+aesgcm.Overhead())
	copy(out, header)
	// the header is bound as additional data so it cannot be swapped
	return aesgcm.Seal(out, nonce, plaintext, header), nil
}

// Decrypt opens a message produced by Encrypt. Any failure, including a
// wrong secret, yields ErrDecrypt.
func (c *AESCipher) Decrypt(ciphertext, secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if len(ciphertext) < headerSize || ciphertext[0] != formatVersion {
		return nil, ErrDecrypt
	}

	salt := ciphertext[1 : 1+saltSize]
	nonce := ciphertext[1+saltSize : headerSize]

	key := DeriveKey(secret, salt, c.params)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext[headerSize:], ciphertext[:headerSize])
	if err != nil {
		return nil, ErrDecrypt
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
