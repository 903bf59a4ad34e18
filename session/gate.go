package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/estante-app/estante/core"
)

// Requirement is the access level a protected view demands.
type Requirement int

const (
	Public Requirement = iota
	AuthenticatedOnly
	AdminOnly
)

// Decision is the gate's answer for the current identity.
type Decision int

const (
	Unchecked Decision = iota
	Pending
	Allowed
	Denied
)

func (d Decision) String() string {
	switch d {
	case Unchecked:
		return "unchecked"
	case Pending:
		return "pending"
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	}
	return "unknown"
}

// Gate decides whether the current identity may enter a protected view.
//
// AuthenticatedOnly trusts local state: worst case a flicker before a
// later 401. AdminOnly never trusts the locally cached role and asks
// the server instead; while that round-trip is in flight the gate
// answers Pending, and on any check failure it fails closed.
//
// The admin answer is cached per user and discarded whenever the
// identity changes, so a fresh login is always re-verified.
type Gate struct {
	manager *Manager
	api     core.AdminVerifier
	log     zerolog.Logger

	mu       sync.Mutex
	userID   *int64 // identity the cached admin decision belongs to
	decision Decision
	resolved chan struct{} // closed when an in-flight check settles
	unsub    func()
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithGateLogger attaches a logger.
func WithGateLogger(log zerolog.Logger) GateOption {
	return func(g *Gate) { g.log = log }
}

func NewGate(manager *Manager, api core.AdminVerifier, opts ...GateOption) *Gate {
	g := &Gate{
		manager:  manager,
		api:      api,
		log:      zerolog.Nop(),
		decision: Unchecked,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.unsub = manager.Subscribe(g.onIdentity)
	return g
}

// Close detaches the gate from the manager.
func (g *Gate) Close() {
	g.mu.Lock()
	unsub := g.unsub
	g.unsub = nil
	g.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// CanEnter answers without blocking. For AdminOnly it may kick off a
// server check and report Pending; callers should render a loading
// state and ask again (or use Wait).
func (g *Gate) CanEnter(req Requirement) Decision {
	id := g.manager.Identity()

	switch req {
	case Public:
		return Allowed
	case AuthenticatedOnly:
		if id.Authenticated() {
			return Allowed
		}
		return Denied
	case AdminOnly:
		if !id.Authenticated() {
			return Denied
		}
		return g.adminDecision(id)
	}
	return Denied
}

// Wait blocks until the decision settles. A context cancelled while the
// admin check is still pending denies access (fail closed).
func (g *Gate) Wait(ctx context.Context, req Requirement) Decision {
	for {
		d := g.CanEnter(req)
		if d != Pending {
			return d
		}

		g.mu.Lock()
		resolved := g.resolved
		g.mu.Unlock()
		if resolved == nil {
			continue // settled between CanEnter and the lock
		}

		select {
		case <-ctx.Done():
			return Denied
		case <-resolved:
		}
	}
}

func (g *Gate) adminDecision(id core.Identity) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.userID == nil || *g.userID != *id.UserID {
		// A check for a different user is stale; start over.
		uid := *id.UserID
		g.userID = &uid
		g.decision = Unchecked
	}

	if g.decision == Unchecked {
		g.decision = Pending
		g.resolved = make(chan struct{})
		go g.check(id.Token, *g.userID)
	}
	return g.decision
}

func (g *Gate) check(token string, userID int64) {
	result := Denied
	ok, err := g.api.VerifyAdmin(context.Background(), token)
	switch {
	case err != nil:
		g.log.Warn().Err(err).Int64("user_id", userID).Msg("admin check failed, denying access")
	case ok:
		result = Allowed
	}

	g.mu.Lock()
	if g.decision == Pending && g.userID != nil && *g.userID == userID {
		g.decision = result
		close(g.resolved)
		g.resolved = nil
	}
	g.mu.Unlock()
}

// onIdentity discards the cached admin decision when the user changes,
// including logout. A still-pending check for the old user is released
// so waiters re-evaluate against the new identity.
func (g *Gate) onIdentity(id core.Identity) {
	g.mu.Lock()
	defer g.mu.Unlock()

	same := (g.userID == nil && id.UserID == nil) ||
		(g.userID != nil && id.UserID != nil && *g.userID == *id.UserID)
	if same {
		return
	}

	if g.decision == Pending && g.resolved != nil {
		close(g.resolved)
		g.resolved = nil
	}
	g.userID = nil
	if id.UserID != nil {
		uid := *id.UserID
		g.userID = &uid
	}
	g.decision = Unchecked
}
