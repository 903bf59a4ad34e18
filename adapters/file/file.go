// Package file persists credentials as a JSON key-value file under the
// user config dir, optionally sealed at rest.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/estante-app/estante/core"
	"github.com/estante-app/estante/pkg/crypto"
)

type Store struct {
	path   string
	sealer *crypto.Sealer
	mu     sync.Mutex
}

var _ core.CredentialStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithSealer encrypts the credential file at rest.
func WithSealer(s *crypto.Sealer) Option {
	return func(st *Store) { st.sealer = s }
}

func New(path string, opts ...Option) *Store {
	st := &Store{path: path}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// DefaultPath returns the conventional credential file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "estante", "credentials.json"), nil
}

func (s *Store) Load() (core.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return core.Identity{}, nil
	}
	if err != nil {
		return core.Identity{}, fmt.Errorf("read credential file: %w", err)
	}

	if s.sealer != nil {
		if data, err = s.sealer.Open(data); err != nil {
			return core.Identity{}, fmt.Errorf("unseal credential file: %w", err)
		}
	}

	var rec map[string]string
	if err := json.Unmarshal(data, &rec); err != nil {
		return core.Identity{}, fmt.Errorf("decode credential file: %w", err)
	}
	return core.DecodeRecord(rec)
}

func (s *Store) Save(id core.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(core.EncodeRecord(id), "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}
	if s.sealer != nil {
		if data, err = s.sealer.Seal(data); err != nil {
			return fmt.Errorf("seal credential file: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	// Write-then-rename so a crash can never leave a half-written file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}
