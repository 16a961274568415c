package signer

import "errors"

var (
	// ErrSignerUnavailable means the signer could not be reached in time.
	ErrSignerUnavailable = errors.New("external signer unavailable")

	// ErrSignerRejected means the signer refused the request: the user
	// declined it or the pairing token was not accepted.
	ErrSignerRejected = errors.New("external signer rejected the request")
)
