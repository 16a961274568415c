package signerd

import (
	"context"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/client/signer"
	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"github.com/dmitrijs2005/hivekeeper/internal/logging"
)

// Keyring signs for every (username, tier) with a key derived from the
// master seed. The same seed always yields the same keys.
type Keyring struct {
	seed       []byte
	allowed    map[string]struct{}
	maxPayload int
	logger     logging.Logger
}

// NewKeyring returns a keyring over seed. An empty allowed list signs for
// everyone; maxPayload <= 0 disables the size check.
func NewKeyring(seed []byte, allowed []string, maxPayload int, logger logging.Logger) *Keyring {
	k := &Keyring{
		seed:       common.CloneBytes(seed),
		maxPayload: maxPayload,
		logger:     logger.With("component", "keyring"),
	}
	if len(allowed) > 0 {
		k.allowed = make(map[string]struct{}, len(allowed))
		for _, u := range allowed {
			k.allowed[u] = struct{}{}
		}
	}
	return k
}

func (k *Keyring) privateKey(username string, tier models.KeyTier) ed25519.PrivateKey {
	mac := hmac.New(sha256.New, k.seed)
	mac.Write([]byte("hivekeeper-signerd/" + username + "/" + string(tier)))
	return ed25519.NewKeyFromSeed(mac.Sum(nil))
}

// PublicKey returns the verification key of (username, tier).
func (k *Keyring) PublicKey(username string, tier models.KeyTier) ed25519.PublicKey {
	return k.privateKey(username, tier).Public().(ed25519.PublicKey)
}

// Sign implements signer.Service. Refusals wrap signer.ErrSignerRejected.
func (k *Keyring) Sign(ctx context.Context, req signer.SignRequest) ([]byte, error) {
	log := k.logger.With("username", req.Username, "tier", req.Tier.String())

	if err := k.check(req); err != nil {
		log.Warn(ctx, "sign request rejected", "reason", err)
		return nil, fmt.Errorf("%w: %w", signer.ErrSignerRejected, err)
	}

	priv := k.privateKey(req.Username, req.Tier)
	defer common.WipeByteArray(priv)

	sig := ed25519.Sign(priv, req.Payload)
	log.Info(ctx, "payload signed", "bytes", len(req.Payload))
	return sig, nil
}

func (k *Keyring) check(req signer.SignRequest) error {
	if k.allowed != nil {
		if _, ok := k.allowed[req.Username]; !ok {
			return fmt.Errorf("account %s is not served here", req.Username)
		}
	}
	if req.Tier == models.TierOwner {
		return errors.New("owner operations are never delegated")
	}
	if len(req.Payload) == 0 {
		return errors.New("empty payload")
	}
	if k.maxPayload > 0 && len(req.Payload) > k.maxPayload {
		return fmt.Errorf("payload of %d bytes exceeds %d", len(req.Payload), k.maxPayload)
	}
	return nil
}
