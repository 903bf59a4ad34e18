// Package memory is an in-process credential store for tests and
// ephemeral sessions that should not survive a restart.
package memory

import (
	"sync"

	"github.com/estante-app/estante/core"
)

type Store struct {
	mu  sync.Mutex
	rec map[string]string
}

var _ core.CredentialStore = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Load() (core.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec == nil {
		return core.Identity{}, nil
	}
	return core.DecodeRecord(s.rec)
}

func (s *Store) Save(id core.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = core.EncodeRecord(id)
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}
