package vault

import "errors"

var (
	// ErrLoginRequired is returned when no account is current.
	ErrLoginRequired = errors.New("login required")

	// ErrDecryptionFailed means stored key material could not be opened
	// with the expected application secret. It points at corrupted data;
	// the account should be re-imported.
	ErrDecryptionFailed = errors.New("stored key material could not be decrypted")

	// ErrInvalidSecret is a wrong PIN or a malformed private key entered
	// by the user.
	ErrInvalidSecret = errors.New("invalid secret")

	// ErrCancelled is returned when the user dismissed the prompt or the
	// authorization was abandoned.
	ErrCancelled = errors.New("authorization cancelled")

	// ErrAuthorizationInProgress is returned when another authorization is
	// already waiting on the prompt.
	ErrAuthorizationInProgress = errors.New("authorization already in progress")

	// ErrNotFound is returned by the store when no account matches.
	ErrNotFound = errors.New("account not found")

	// ErrOwnerNotStorable is returned when adding an owner-tier account.
	ErrOwnerNotStorable = errors.New("owner keys are never stored")

	// ErrInvalidAccount is returned for records that violate the account
	// invariants (missing username, unknown tier, stored key without
	// ciphertext).
	ErrInvalidAccount = errors.New("invalid account")

	// ErrIdentityChanged is wrapped with ErrCancelled when the current
	// account changed while an authorization was pending.
	ErrIdentityChanged = errors.New("current account changed during authorization")
)
