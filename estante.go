// Package estante is the client-side session and authorization layer
// for apps built on the estante book-tracking API: durable credential
// storage, a single reactive identity record, background token
// revalidation and an authorization gate for protected views.
package estante

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/estante-app/estante/adapters/file"
	"github.com/estante-app/estante/api"
	"github.com/estante-app/estante/core"
	"github.com/estante-app/estante/pkg/deviceid"
	"github.com/estante-app/estante/session"
)

// interfaces
type (
	CredentialStore = core.CredentialStore
	AuthAPI         = core.AuthAPI
	TokenVerifier   = core.TokenVerifier
	AdminVerifier   = core.AdminVerifier
)

// structs
type (
	Identity      = core.Identity
	Role          = core.Role
	UserProfile   = core.UserProfile
	Credentials   = core.Credentials
	ProfileUpdate = core.ProfileUpdate
	RegisterInput = core.RegisterInput

	Manager     = session.Manager
	Validator   = session.Validator
	Gate        = session.Gate
	Requirement = session.Requirement
	Decision    = session.Decision
)

const (
	RoleReader = core.RoleReader
	RoleAuthor = core.RoleAuthor
	RoleAdmin  = core.RoleAdmin

	Public            = session.Public
	AuthenticatedOnly = session.AuthenticatedOnly
	AdminOnly         = session.AdminOnly

	Unchecked = session.Unchecked
	Pending   = session.Pending
	Allowed   = session.Allowed
	Denied    = session.Denied
)

var (
	ErrInvalidCredentialPayload = core.ErrInvalidCredentialPayload
	ErrNotAuthenticated         = core.ErrNotAuthenticated
	ErrInvalidCredentials       = core.ErrInvalidCredentials
	ErrTokenRejected            = core.ErrTokenRejected
	ErrAdminCheckFailed         = core.ErrAdminCheckFailed
	ErrStaleUpdate              = core.ErrStaleUpdate
)

var (
	ErrBaseURLRequired = core.ErrBaseURLRequired
)

type Config struct {
	// BaseURL is the root of the estante backend API.
	BaseURL string `env:"ESTANTE_BASE_URL"`

	// ValidateInterval is the period of the background token check.
	ValidateInterval time.Duration `env:"ESTANTE_VALIDATE_INTERVAL, default=10m"`

	// DisableValidator turns off background revalidation entirely.
	DisableValidator bool `env:"ESTANTE_DISABLE_VALIDATOR"`

	// Optional config
	Store      CredentialStore // defaults to the file store under the user config dir
	API        AuthAPI         // defaults to the HTTP client for BaseURL
	HTTPClient *http.Client
	Logger     *zerolog.Logger
	DeviceID   string
}

// ConfigFromEnv reads the environment-driven parts of the config.
func ConfigFromEnv(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Estante bundles the wired session components.
type Estante struct {
	Manager   *session.Manager
	Gate      *session.Gate
	Validator *session.Validator // nil when DisableValidator is set
}

// New wires the credential store, API client, session manager,
// validator and gate, hydrating the session from the store before
// returning.
func New(config Config) (*Estante, error) {
	if config.BaseURL == "" && config.API == nil {
		return nil, ErrBaseURLRequired
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	// Set Defaults

	store := config.Store
	if store == nil {
		path, err := file.DefaultPath()
		if err != nil {
			return nil, err
		}
		store = file.New(path)
	}

	backend := config.API
	if backend == nil {
		opts := []api.Option{api.WithClientLogger(logger)}
		if config.HTTPClient != nil {
			opts = append(opts, api.WithHTTPClient(config.HTTPClient))
		}
		device := config.DeviceID
		if device == "" {
			// Best effort: an unidentified device is still allowed to sign in.
			if id, err := deviceid.ID(); err == nil {
				device = id
			} else {
				logger.Debug().Err(err).Msg("no stable device id available")
			}
		}
		opts = append(opts, api.WithDeviceID(device))
		backend = api.NewClient(config.BaseURL, opts...)
	}

	manager := session.NewManager(store, backend, session.WithLogger(logger))
	if err := manager.Initialize(); err != nil {
		return nil, err
	}

	gate := session.NewGate(manager, backend, session.WithGateLogger(logger))

	e := &Estante{Manager: manager, Gate: gate}
	if !config.DisableValidator {
		e.Validator = session.NewValidator(manager, backend,
			session.WithInterval(config.ValidateInterval),
			session.WithValidatorLogger(logger),
		)
	}
	return e, nil
}

// Close stops the background validator and detaches the gate. The
// credential store is left intact so the session survives a restart.
func (e *Estante) Close() {
	if e.Validator != nil {
		e.Validator.Close()
	}
	e.Gate.Close()
}
