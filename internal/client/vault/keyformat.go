package vault

import (
	"errors"
	"strings"
)

const (
	wifLength = 51
	wifPrefix = '5'

	base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
)

// ErrKeyFormat is returned by CheckKeyFormat.
var ErrKeyFormat = errors.New("not a WIF private key")

// CheckKeyFormat is a typo guard for raw private keys entered by hand: a
// WIF key is 51 base58 characters starting with '5'. Passing it says
// nothing about whether the key is valid for an account.
func CheckKeyFormat(key []byte) error {
	if len(key) != wifLength || key[0] != wifPrefix {
		return ErrKeyFormat
	}
	for _, c := range key {
		if c > 127 || !strings.ContainsRune(base58Alphabet, rune(c)) {
			return ErrKeyFormat
		}
	}
	return nil
}
