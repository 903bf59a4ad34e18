package crypto

import (
	"bytes"
	"errors"
	"testing"
)

// Requirement: Seal/Open round-trips, and a wrong passphrase or a
// tampered ciphertext never decrypts.
func TestSealer(t *testing.T) {
	salt, err := GenerateSalt(16)
	if err != nil {
		t.Fatalf("GenerateSalt() error = %v", err)
	}
	sealer := NewSealer("correct horse battery staple", salt)

	plain := []byte(`{"token":"tok123"}`)
	sealed, err := sealer.Seal(plain)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if bytes.Contains(sealed, []byte("tok123")) {
		t.Fatal("sealed output contains plaintext")
	}

	opened, err := sealer.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(opened, plain) {
		t.Fatalf("Open() = %q, want %q", opened, plain)
	}

	// Same passphrase and salt derive the same key.
	if _, err := NewSealer("correct horse battery staple", salt).Open(sealed); err != nil {
		t.Fatalf("re-derived sealer failed to open: %v", err)
	}

	// Wrong passphrase fails.
	if _, err := NewSealer("wrong", salt).Open(sealed); !errors.Is(err, ErrOpenFailed) {
		t.Fatalf("wrong passphrase error = %v, want ErrOpenFailed", err)
	}

	// Tampering fails.
	sealed[len(sealed)-1] ^= 0xff
	if _, err := sealer.Open(sealed); !errors.Is(err, ErrOpenFailed) {
		t.Fatalf("tampered ciphertext error = %v, want ErrOpenFailed", err)
	}

	// Truncated input fails cleanly.
	if _, err := sealer.Open(sealed[:10]); !errors.Is(err, ErrCiphertextTooShort) {
		t.Fatalf("short ciphertext error = %v, want ErrCiphertextTooShort", err)
	}
}
