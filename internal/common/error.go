package common

import "errors"

var (
	// Protocol-level errors surfaced to callers of the client services.
	ErrAuthFailure        = errors.New("authentication failed")
	ErrRemoteUnavailable  = errors.New("remote store unavailable")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrMalformedLink      = errors.New("malformed invitation link")
	ErrDecryptionFailure  = errors.New("decryption failure")
	ErrNoPublicKey        = errors.New("counterpart has no published public key")
	ErrContactsNotLoaded  = errors.New("contact directory not loaded")
	ErrUntrustedSender    = errors.New("sender is not trusted")

	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorConflict     = errors.New("conflict")
	ErrorInvalidInput = errors.New("invalid input")

	// Auth errors.
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidNonce     = errors.New("invalid nonce")
	ErrInvalidSignature = errors.New("invalid signature")

	// Facilitated transaction lifecycle.
	ErrInvalidTransition = errors.New("invalid state transition")
)
