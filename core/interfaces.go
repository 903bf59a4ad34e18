package core

import "context"

// Ports define interfaces for external dependencies

// ============================================
// CREDENTIAL STORE PORT (durable persistence)
// ============================================

// CredentialStore persists the identity record across process restarts.
//
// Implementations never validate token contents and never touch the
// network. Load must return the unauthenticated baseline when no token
// is stored, even if other stale keys are still present.
type CredentialStore interface {
	Load() (Identity, error)
	Save(Identity) error
	Clear() error
}

// ============================================
// BACKEND PORTS (HTTP calls to the book API)
// ============================================

// TokenVerifier confirms a stored token is still accepted by the server.
type TokenVerifier interface {
	Validate(ctx context.Context, token string) error
}

// AdminVerifier asks the server whether the token's account is an admin.
// The locally cached role is client-supplied and is never trusted for
// admin gating.
type AdminVerifier interface {
	VerifyAdmin(ctx context.Context, token string) (bool, error)
}

// AuthAPI is the full backend surface the session layer consumes.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Register(ctx context.Context, input RegisterInput) (*Credentials, error)
	UpdateProfile(ctx context.Context, token string, userID int64, update ProfileUpdate) (*UserProfile, error)

	TokenVerifier
	AdminVerifier
}
