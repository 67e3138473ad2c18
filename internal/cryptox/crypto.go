package cryptox

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length of a sealing key in bytes.
const KeySize = chacha20poly1305.KeySize

var (
	ErrInvalidKey         = errors.New("invalid sealing key")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// Sealer encrypts small values with XChaCha20-Poly1305. The random nonce is
// prepended to the returned ciphertext.
type Sealer struct {
	key []byte
}

func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(key))
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Sealer{key: k}, nil
}

// Seal encrypts plaintext. additional is authenticated but not encrypted;
// the store passes the preference key so values cannot be swapped between keys.
func (s *Sealer) Seal(plaintext, additional []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, additional), nil
}

// Open reverses Seal.
func (s *Sealer) Open(ciphertext, additional []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}

	nonce, box := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	return aead.Open(nil, nonce, box, additional)
}

// GenerateKey returns a fresh random sealing key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// LoadOrCreateKey reads the installation key at path, creating it with
// owner-only permissions when it does not exist yet.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: %s has %d bytes", ErrInvalidKey, path, len(key))
		}
		return key, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read key: %w", err)
	}

	key, err = GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			// lost a race with another opener
			return LoadOrCreateKey(path)
		}
		return nil, fmt.Errorf("create key: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(key); err != nil {
		return nil, fmt.Errorf("write key: %w", err)
	}
	return key, nil
}
