// Package common holds sentinel errors shared across the vault.
//
// Call sites wrap these with fmt.Errorf("...: %w", ...) so callers can match
// with errors.Is while keeping the underlying message.
package common

import "errors"

var (

	// core taxonomy
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrCollaborator = errors.New("collaborator error")

	// ErrCrypto covers malformed ciphertext framing only. Decrypting with a
	// wrong key is NOT an error: the legacy cipher mode carries no
	// authentication tag, so a wrong key yields garbage bytes, not a failure.
	ErrCrypto = errors.New("malformed ciphertext")

	// auth-specific errors
	ErrInvalidToken         = errors.New("invalid token")
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrWeakPassword         = errors.New("password is too weak")
	ErrInvalidEmailPassword = errors.New("invalid email/password")
	ErrTooManyAttempts      = errors.New("too many login attempts")
	ErrNoSession            = errors.New("no active session")
)
