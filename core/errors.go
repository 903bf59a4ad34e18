package core

import "errors"

// Local precondition errors (caller bugs, never sent to the server)
var (
	ErrInvalidCredentialPayload = errors.New("login requires a non-empty token and user id")
	ErrNotAuthenticated         = errors.New("no authenticated session")
)

// Server-confirmed failures
var (
	ErrInvalidCredentials = errors.New("invalid email or password") // 401 Unauthorized
	ErrTokenRejected      = errors.New("session token rejected by server")
	ErrAdminCheckFailed   = errors.New("could not verify admin access")
)

// In-flight response discarded because the session changed underneath it
var (
	ErrStaleUpdate = errors.New("session changed while the update was in flight")
)

// Stored record errors
var (
	ErrCorruptRecord = errors.New("stored credential record is corrupt")
)

// Config errors (client-side configuration)
var (
	ErrBaseURLRequired = errors.New("base URL is required")
)
