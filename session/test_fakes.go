package session

import (
	"context"
	"sync"

	"github.com/estante-app/estante/core"
)

// FakeStore is an in-memory credential store with error injection,
// shared by the tests in this package.
type FakeStore struct {
	mu  sync.Mutex
	rec map[string]string

	loadErr  error
	saveErr  error
	clearErr error

	saves  int
	clears int
}

var _ core.CredentialStore = (*FakeStore)(nil)

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// Seed installs a raw record, bypassing Save, so tests can simulate
// stale or partial data left behind by older versions.
func (f *FakeStore) Seed(rec map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec = rec
}

func (f *FakeStore) Load() (core.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return core.Identity{}, f.loadErr
	}
	if f.rec == nil {
		return core.Identity{}, nil
	}
	return core.DecodeRecord(f.rec)
}

func (f *FakeStore) Save(id core.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.rec = core.EncodeRecord(id)
	return nil
}

func (f *FakeStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.clears++
	f.rec = nil
	return nil
}

func (f *FakeStore) Clears() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clears
}

// FakeAPI implements core.AuthAPI with overridable behavior and call
// counting.
type FakeAPI struct {
	mu sync.Mutex

	LoginFn         func(ctx context.Context, email, password string) (*core.Credentials, error)
	RegisterFn      func(ctx context.Context, input core.RegisterInput) (*core.Credentials, error)
	ValidateFn      func(ctx context.Context, token string) error
	VerifyAdminFn   func(ctx context.Context, token string) (bool, error)
	UpdateProfileFn func(ctx context.Context, token string, userID int64, update core.ProfileUpdate) (*core.UserProfile, error)

	validateCalls    int
	verifyAdminCalls int
}

var _ core.AuthAPI = (*FakeAPI)(nil)

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{}
}

func (f *FakeAPI) Login(ctx context.Context, email, password string) (*core.Credentials, error) {
	if f.LoginFn != nil {
		return f.LoginFn(ctx, email, password)
	}
	return &core.Credentials{
		Token: "tok-" + email,
		User:  core.UserProfile{ID: 1, Role: core.RoleReader, DisplayName: email},
	}, nil
}

func (f *FakeAPI) Register(ctx context.Context, input core.RegisterInput) (*core.Credentials, error) {
	if f.RegisterFn != nil {
		return f.RegisterFn(ctx, input)
	}
	return &core.Credentials{
		Token: "tok-" + input.Email,
		User:  core.UserProfile{ID: 1, Role: core.RoleReader, DisplayName: input.Name},
	}, nil
}

func (f *FakeAPI) Validate(ctx context.Context, token string) error {
	f.mu.Lock()
	f.validateCalls++
	f.mu.Unlock()
	if f.ValidateFn != nil {
		return f.ValidateFn(ctx, token)
	}
	return nil
}

func (f *FakeAPI) VerifyAdmin(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	f.verifyAdminCalls++
	f.mu.Unlock()
	if f.VerifyAdminFn != nil {
		return f.VerifyAdminFn(ctx, token)
	}
	return false, nil
}

func (f *FakeAPI) UpdateProfile(ctx context.Context, token string, userID int64, update core.ProfileUpdate) (*core.UserProfile, error) {
	if f.UpdateProfileFn != nil {
		return f.UpdateProfileFn(ctx, token, userID, update)
	}
	profile := core.UserProfile{ID: userID}
	if update.DisplayName != nil {
		profile.DisplayName = *update.DisplayName
	}
	if update.AvatarURL != nil {
		profile.AvatarURL = *update.AvatarURL
	}
	return &profile, nil
}

func (f *FakeAPI) ValidateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateCalls
}

func (f *FakeAPI) VerifyAdminCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyAdminCalls
}
