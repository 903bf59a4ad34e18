package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/estante-app/estante/core"
)

// DefaultValidateInterval is how often an authenticated session is
// revalidated against the server.
const DefaultValidateInterval = 10 * time.Minute

// Validator is the recurring background check that a stored token is
// still accepted by the server. It arms itself when the session becomes
// authenticated and disarms on logout, so at most one recurring task is
// ever active no matter how many components hold a reference to it.
//
// A rejected token (any non-2xx response or transport error) is fatal
// for the session: the validator signs the user out immediately, logs
// the rejection, and never retries or surfaces it.
type Validator struct {
	manager  *Manager
	api      core.TokenVerifier
	interval time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc // non-nil while the recurring task runs
	closed bool
	unsub  func()
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithInterval overrides the validation period.
func WithInterval(d time.Duration) ValidatorOption {
	return func(v *Validator) {
		if d > 0 {
			v.interval = d
		}
	}
}

// WithValidatorLogger attaches a logger.
func WithValidatorLogger(log zerolog.Logger) ValidatorOption {
	return func(v *Validator) { v.log = log }
}

// NewValidator wires a validator to the manager's lifecycle. If the
// manager is already authenticated the recurring task starts right
// away.
func NewValidator(manager *Manager, api core.TokenVerifier, opts ...ValidatorOption) *Validator {
	v := &Validator{
		manager:  manager,
		api:      api,
		interval: DefaultValidateInterval,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.unsub = manager.Subscribe(v.onIdentity)
	v.onIdentity(manager.Identity())
	return v
}

// Close stops the recurring task and detaches from the manager. No
// ticks fire after Close returns.
func (v *Validator) Close() {
	v.mu.Lock()
	v.closed = true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	unsub := v.unsub
	v.unsub = nil
	v.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (v *Validator) onIdentity(id core.Identity) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	switch {
	case id.Authenticated() && v.cancel == nil:
		ctx, cancel := context.WithCancel(context.Background())
		v.cancel = cancel
		go v.run(ctx)
	case !id.Authenticated() && v.cancel != nil:
		v.cancel()
		v.cancel = nil
	}
}

// run executes ticks until the task is cancelled. Ticks are not
// re-entrant: a slow validation simply delays the next tick, because
// the ticker drops beats while the previous check is still running.
func (v *Validator) run(ctx context.Context) {
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.tick(ctx)
		}
	}
}

func (v *Validator) tick(ctx context.Context) {
	id := v.manager.Identity()
	if !id.Authenticated() {
		return
	}

	if err := v.api.Validate(ctx, id.Token); err != nil {
		if ctx.Err() != nil {
			return // task was cancelled mid-request, not a rejection
		}
		v.log.Warn().Err(err).Msg("token rejected, ending session")
		v.manager.Logout()
	}
}
