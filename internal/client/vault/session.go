package vault

import (
	"sync"

	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"github.com/dmitrijs2005/hivekeeper/internal/cryptox"
)

// SessionCache holds zero or one remembered PIN for the lifetime of the
// process. The PIN is kept sealed under the application secret, so a
// memory dump needs the application secret to recover it, and the PIN to
// recover any key.
//
// The cache is not bound to an account: Store clears it on every mutation.
type SessionCache struct {
	mu        sync.Mutex
	cipher    cryptox.Cipher
	appSecret []byte
	sealed    []byte
}

// NewSessionCache returns an empty cache sealing PINs with c under appSecret.
func NewSessionCache(c cryptox.Cipher, appSecret []byte) *SessionCache {
	return &SessionCache{cipher: c, appSecret: common.CloneBytes(appSecret)}
}

// Set seals secret and stores it, replacing any previous value. On error
// the previous value is kept.
func (c *SessionCache) Set(secret []byte) error {
	sealed, err := c.cipher.Encrypt(secret, c.appSecret)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	common.WipeByteArray(c.sealed)
	c.sealed = sealed
	return nil
}

// Get returns a copy of the sealed PIN, or false when nothing is cached.
func (c *SessionCache) Get() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed == nil {
		return nil, false
	}
	return common.CloneBytes(c.sealed), true
}

// Clear drops the cached value.
func (c *SessionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	common.WipeByteArray(c.sealed)
	c.sealed = nil
}

// TryUnlock recovers the cached PIN and uses it to open accountCiphertext.
// A missing value or any decryption failure is a miss, not an error.
func (c *SessionCache) TryUnlock(accountCiphertext []byte) ([]byte, bool) {
	sealed, ok := c.Get()
	if !ok {
		return nil, false
	}

	pin, err := c.cipher.Decrypt(sealed, c.appSecret)
	if err != nil {
		return nil, false
	}
	defer common.WipeByteArray(pin)

	key, err := c.cipher.Decrypt(accountCiphertext, pin)
	if err != nil {
		return nil, false
	}
	return key, true
}
