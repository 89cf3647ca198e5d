// Package common defines shared constants and sentinel errors used across
// the gateway, identity, and storage layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Remote/transport errors (network unreachable, store unavailable).
	ErrorTransport = errors.New("transport failure")

	// Decoding errors (malformed remote timestamp, schema mismatch).
	ErrorDecode = errors.New("decode failure")

	// Auth/session errors.
	ErrorUnauthorized   = errors.New("unauthorized")
	ErrorUserNotFound   = errors.New("user does not exist")
	ErrorSessionExpired = errors.New("session expired")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrorInvariant marks states the protocol should never reach, such as
	// a signed-in result arriving without a challenge step. It is reported,
	// never used to abort the process.
	ErrorInvariant = errors.New("invariant violated")

	// Generic internal failure.
	ErrorInternal = errors.New("internal error")
)
