package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/client/signer"
	"github.com/dmitrijs2005/hivekeeper/internal/client/vault"
	"github.com/dmitrijs2005/hivekeeper/internal/logging"
)

// ErrSignerNotConfigured is returned when an external signer account needs
// a signature but no signer endpoint is configured.
var ErrSignerNotConfigured = errors.New("external signer is not configured")

// SignResult is the outcome of a signing request.
type SignResult struct {
	Username string
	Tier     models.KeyTier

	// Delegated is set when the external signer produced Signature.
	Delegated bool
	Signature []byte

	// Fingerprint identifies the unlocked key without revealing it.
	Fingerprint string
	// Key is the plaintext key, only when the caller asked to keep it.
	// The caller must wipe it.
	Key []byte
}

// SigningService turns a signing request into a credential and, for
// external signer accounts, a signature.
type SigningService interface {
	// Sign authorizes tier for the current account. Delegated accounts are
	// signed by the external signer; for stored keys the key is unlocked
	// and handed back only when keepKey is set.
	Sign(ctx context.Context, tier models.KeyTier, payload []byte, keepKey bool) (SignResult, error)
}

type signingService struct {
	store      *vault.Store
	negotiator *vault.Negotiator
	signer     signer.Signer
	logger     logging.Logger
}

// NewSigningService constructs a SigningService. s may be nil when no
// external signer is configured.
func NewSigningService(store *vault.Store, ng *vault.Negotiator, s signer.Signer, logger logging.Logger) SigningService {
	return &signingService{store: store, negotiator: ng, signer: s, logger: logger.With("component", "signing")}
}

// Fingerprint is the first 8 bytes of SHA-256 of key, in hex.
func Fingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:8])
}

func (s *signingService) Sign(ctx context.Context, tier models.KeyTier, payload []byte, keepKey bool) (SignResult, error) {
	cred, err := s.negotiator.Authorize(ctx, tier)
	if err != nil {
		cur, _ := s.store.Current()
		s.logOutcome(ctx, s.logger.With("username", cur.Username, "tier", tier.String()), err)
		return SignResult{}, err
	}

	// the account the credential was issued for, not whatever is current now
	username := cred.Account.Username
	log := s.logger.With("username", username, "tier", tier.String())
	res := SignResult{Username: username, Tier: tier}

	if cred.DelegateToExternalSigner {
		if s.signer == nil {
			return SignResult{}, ErrSignerNotConfigured
		}
		sig, err := s.signer.Sign(ctx, username, tier, payload)
		if err != nil {
			log.Error(ctx, "external signer failed", "error", err)
			return SignResult{}, fmt.Errorf("delegate sign: %w", err)
		}
		res.Delegated = true
		res.Signature = sig
		log.Info(ctx, "signed by external signer")
		return res, nil
	}

	res.Fingerprint = Fingerprint(cred.PlaintextKey)
	if keepKey {
		res.Key = cred.PlaintextKey
	} else {
		cred.Wipe()
	}
	log.Info(ctx, "key unlocked", "fingerprint", res.Fingerprint)
	return res, nil
}

func (s *signingService) logOutcome(ctx context.Context, log logging.Logger, err error) {
	switch {
	case errors.Is(err, vault.ErrCancelled):
		log.Info(ctx, "authorization cancelled", "reason", err)
	case errors.Is(err, vault.ErrInvalidSecret), errors.Is(err, vault.ErrLoginRequired):
		log.Warn(ctx, "authorization refused", "error", err)
	case errors.Is(err, vault.ErrDecryptionFailed):
		log.Error(ctx, "stored key unreadable, re-import the account", "error", err)
	default:
		log.Error(ctx, "authorization failed", "error", err)
	}
}
