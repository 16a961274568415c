package vault

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"github.com/dmitrijs2005/hivekeeper/internal/cryptox"
	"github.com/google/uuid"
)

// Negotiator turns "I need to sign at tier T" into a usable credential.
//
// Rules are evaluated in order, first match wins:
//
//  1. no current account: ErrLoginRequired
//  2. external signer account, tier below owner: delegate
//  3. active or owner tier: prompt for the raw key, never cached
//  4. key not PIN-protected: open it with the application secret
//  5. otherwise: cached PIN, else prompt for the PIN
//
// At most one authorization waits on the prompt at any time.
type Negotiator struct {
	store     *Store
	cache     *SessionCache
	cipher    cryptox.Cipher
	appSecret []byte
	prompter  Prompter

	maxAttempts int
	newID       func() string

	pending atomic.Bool
}

// Option configures a Negotiator.
type Option func(*Negotiator)

// WithMaxAttempts lets the user retry a wrong secret up to n times within
// one authorization before ErrInvalidSecret is returned. Values below 1
// mean 1.
func WithMaxAttempts(n int) Option {
	return func(ng *Negotiator) {
		if n < 1 {
			n = 1
		}
		ng.maxAttempts = n
	}
}

// NewNegotiator wires the negotiator to the store, its session cache, the
// cipher used for key material and the prompt.
func NewNegotiator(store *Store, cache *SessionCache, c cryptox.Cipher, appSecret []byte, p Prompter, opts ...Option) *Negotiator {
	ng := &Negotiator{
		store:       store,
		cache:       cache,
		cipher:      c,
		appSecret:   common.CloneBytes(appSecret),
		prompter:    p,
		maxAttempts: 1,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(ng)
	}
	return ng
}

// Pending reports whether an authorization is waiting on the prompt.
func (ng *Negotiator) Pending() bool {
	return ng.pending.Load()
}

// Authorize returns a credential able to sign an operation of tier.
// The caller owns the returned plaintext key and should wipe it after use.
//
// While another authorization waits on the prompt every call fails with
// ErrAuthorizationInProgress, including calls that would not need one.
func (ng *Negotiator) Authorize(ctx context.Context, tier models.KeyTier) (models.Credential, error) {
	if ng.pending.Load() {
		return models.Credential{}, ErrAuthorizationInProgress
	}

	tier, err := models.ParseKeyTier(string(tier))
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %w", common.ErrorIncorrectTier, err)
	}

	account, gen, ok := ng.store.currentWithGeneration()
	if !ok {
		return models.Credential{}, ErrLoginRequired
	}

	if account.IsExternalSigner() && tier != models.TierOwner {
		return models.Delegated(account.Key()), nil
	}

	if tier.RequiresFreshSecret() {
		return ng.promptRawKey(ctx, account, tier, gen)
	}

	if !account.IsPinProtected {
		key, err := ng.cipher.Decrypt(account.Ciphertext, ng.appSecret)
		if err != nil {
			return models.Credential{}, fmt.Errorf("%w: %s: %w", ErrDecryptionFailed, account.Key(), err)
		}
		return ng.fenced(account.Key(), gen, key)
	}

	if key, hit := ng.cache.TryUnlock(account.Ciphertext); hit {
		return ng.fenced(account.Key(), gen, key)
	}

	return ng.promptPIN(ctx, account, tier, gen)
}

// fenced hands out key only if the current account did not change since
// gen was read.
func (ng *Negotiator) fenced(account models.AccountKey, gen uint64, key []byte) (models.Credential, error) {
	if err := ng.store.ifGeneration(gen, func() error { return nil }); err != nil {
		common.WipeByteArray(key)
		return models.Credential{}, err
	}
	return models.Credential{Account: account, PlaintextKey: key}, nil
}

// verifyFunc checks one submission and returns the plaintext key.
type verifyFunc func(resp PromptResponse) ([]byte, error)

func (ng *Negotiator) promptRawKey(ctx context.Context, account models.Account, tier models.KeyTier, gen uint64) (models.Credential, error) {
	req := PromptRequest{Kind: PromptRawKey, Username: account.Username, Tier: tier}

	key, err := ng.withPrompt(ctx, req, gen, func(resp PromptResponse) ([]byte, error) {
		if err := CheckKeyFormat(resp.Value); err != nil {
			return nil, err
		}
		return common.CloneBytes(resp.Value), nil
	})
	if err != nil {
		return models.Credential{}, err
	}
	return models.Credential{Account: account.Key(), PlaintextKey: key}, nil
}

func (ng *Negotiator) promptPIN(ctx context.Context, account models.Account, tier models.KeyTier, gen uint64) (models.Credential, error) {
	req := PromptRequest{Kind: PromptPIN, Username: account.Username, Tier: tier, AllowRemember: true}

	key, err := ng.withPrompt(ctx, req, gen, func(resp PromptResponse) ([]byte, error) {
		key, err := ng.cipher.Decrypt(account.Ciphertext, resp.Value)
		if err != nil {
			return nil, err
		}
		if !resp.Remember {
			return key, nil
		}
		// cache only while the account the PIN was entered for is current
		err = ng.store.ifGeneration(gen, func() error {
			return ng.cache.Set(resp.Value)
		})
		if err != nil {
			common.WipeByteArray(key)
			return nil, err
		}
		return key, nil
	})
	if err != nil {
		return models.Credential{}, err
	}
	return models.Credential{Account: account.Key(), PlaintextKey: key}, nil
}

// withPrompt owns the single prompt slot for the duration of one
// authorization, asking up to maxAttempts times. The slot is released
// when the prompter has returned, which may be after withPrompt itself.
func (ng *Negotiator) withPrompt(ctx context.Context, req PromptRequest, gen uint64, verify verifyFunc) ([]byte, error) {
	if !ng.pending.CompareAndSwap(false, true) {
		return nil, ErrAuthorizationInProgress
	}
	release := true
	defer func() {
		if release {
			ng.pending.Store(false)
		}
	}()

	req.ID = ng.newID()

	var lastErr error
	for attempt := 1; attempt <= ng.maxAttempts; attempt++ {
		req.Attempt = attempt
		req.LastErr = lastErr

		resp, abandoned, err := ng.ask(ctx, req)
		if abandoned {
			release = false
		}
		if err != nil {
			return nil, err
		}

		if err := ng.store.ifGeneration(gen, func() error { return nil }); err != nil {
			common.WipeByteArray(resp.Value)
			return nil, err
		}

		key, err := verify(resp)
		common.WipeByteArray(resp.Value)
		if err == nil {
			return key, nil
		}
		if errors.Is(err, ErrCancelled) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %w", ErrInvalidSecret, lastErr)
}

// ask runs one prompt and maps every way it can end without a submission
// to ErrCancelled. The call returns when ctx is done even if the prompter
// ignores ctx; the second result is then true and the prompt slot is
// released once the prompter finally returns.
func (ng *Negotiator) ask(ctx context.Context, req PromptRequest) (PromptResponse, bool, error) {
	type answer struct {
		resp PromptResponse
		err  error
	}
	done := make(chan answer, 1)

	go func() {
		resp, err := ng.prompter.RequestSecret(ctx, req)
		done <- answer{resp: resp, err: err}
	}()

	select {
	case a := <-done:
		switch {
		case a.err == nil:
			return a.resp, false, nil
		case errors.Is(a.err, ErrCancelled):
			return PromptResponse{}, false, ErrCancelled
		case errors.Is(a.err, context.Canceled), errors.Is(a.err, context.DeadlineExceeded):
			return PromptResponse{}, false, fmt.Errorf("%w: %w", ErrCancelled, a.err)
		default:
			return PromptResponse{}, false, fmt.Errorf("secret prompt: %w", a.err)
		}
	case <-ctx.Done():
		go func() {
			a := <-done
			common.WipeByteArray(a.resp.Value)
			ng.pending.Store(false)
		}()
		return PromptResponse{}, true, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	}
}
