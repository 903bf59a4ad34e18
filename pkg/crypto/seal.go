package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

var (
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	ErrOpenFailed         = errors.New("decryption failed")
)

const (
	nonceSize = 24
	keySize   = 32

	// argon2id parameters for deriving the sealing key
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Sealer encrypts small blobs (credential files) at rest using a key
// derived from a passphrase with argon2id.
type Sealer struct {
	key [keySize]byte
}

// NewSealer derives a sealing key from the passphrase and salt. The
// same pair always yields the same key, so persist the salt next to the
// sealed data.
func NewSealer(passphrase string, salt []byte) *Sealer {
	derived := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keySize)

	s := &Sealer{}
	copy(s.key[:], derived)
	return s
}

// GenerateSalt returns n random bytes for key derivation.
func GenerateSalt(n int) ([]byte, error) {
	if n <= 0 {
		n = 16
	}
	salt := make([]byte, n)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// Seal encrypts plain and prepends the random nonce.
func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize {
		return nil, ErrCiphertextTooShort
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrOpenFailed
	}
	return plain, nil
}
