// Package models defines the client-side data models of the vault.
package models

import (
	"fmt"
	"strings"
	"time"
)

// KeyTier is the authority level of a key, from posting (lowest) to owner.
type KeyTier string

const (
	// TierAny matches every tier in lookups; it is never stored.
	TierAny     KeyTier = ""
	TierPosting KeyTier = "posting"
	TierActive  KeyTier = "active"
	TierMemo    KeyTier = "memo"
	TierOwner   KeyTier = "owner"
)

// ParseKeyTier converts a user or database string into a KeyTier.
func ParseKeyTier(s string) (KeyTier, error) {
	switch t := KeyTier(strings.ToLower(strings.TrimSpace(s))); t {
	case TierPosting, TierActive, TierMemo, TierOwner:
		return t, nil
	default:
		return TierAny, fmt.Errorf("unknown key tier %q", s)
	}
}

// RequiresFreshSecret reports whether operations of this tier must always
// be authorized with freshly entered key material.
func (t KeyTier) RequiresFreshSecret() bool {
	return t == TierActive || t == TierOwner
}

func (t KeyTier) String() string {
	if t == TierAny {
		return "any"
	}
	return string(t)
}

// LoginMethod tells how an account signs.
type LoginMethod string

const (
	// LoginExternalSigner delegates all signing to an external agent.
	LoginExternalSigner LoginMethod = "external_signer"
	// LoginStoredKey keeps the encrypted private key in the vault.
	LoginStoredKey LoginMethod = "stored_key"
)

// ParseLoginMethod converts a stored string into a LoginMethod.
func ParseLoginMethod(s string) (LoginMethod, error) {
	switch m := LoginMethod(s); m {
	case LoginExternalSigner, LoginStoredKey:
		return m, nil
	default:
		return "", fmt.Errorf("unknown login method %q", s)
	}
}

// Account is one locally known identity binding. An account is registered
// once per tier it holds a key for.
type Account struct {
	// ID is the persistence identity, kept across re-registration.
	ID string

	Username string
	KeyTier  KeyTier

	LoginMethod LoginMethod

	// Ciphertext is the encrypted private key. Only set for LoginStoredKey.
	Ciphertext []byte

	// IsPinProtected tells whether Ciphertext is sealed under the user's PIN
	// rather than the application secret.
	IsPinProtected bool

	// CreatedAt is set once when the account is first added (UTC).
	CreatedAt time.Time
}

// Key returns the (username, tier) identity of the account.
func (a Account) Key() AccountKey {
	return AccountKey{Username: a.Username, KeyTier: a.KeyTier}
}

// IsExternalSigner reports whether signing for the account is delegated.
func (a Account) IsExternalSigner() bool {
	return a.LoginMethod == LoginExternalSigner
}

// Clone returns a copy that does not share the ciphertext buffer.
func (a Account) Clone() Account {
	if a.Ciphertext != nil {
		a.Ciphertext = append([]byte(nil), a.Ciphertext...)
	}
	return a
}

// AccountKey selects accounts by username and, unless KeyTier is TierAny,
// by tier.
type AccountKey struct {
	Username string
	KeyTier  KeyTier
}

// Matches reports whether a is selected by k.
func (k AccountKey) Matches(a Account) bool {
	if a.Username != k.Username {
		return false
	}
	return k.KeyTier == TierAny || a.KeyTier == k.KeyTier
}

func (k AccountKey) String() string {
	return k.Username + "/" + k.KeyTier.String()
}
