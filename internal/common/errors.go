// Package common defines shared constants, sentinel errors and small byte
// helpers used across hivekeeper components. Callers should use errors.Is
// to match the error values.
package common

import "errors"

var (
	// Validation errors.
	ErrorIncorrectTier = errors.New("incorrect key tier")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
