// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/advith-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// KeySize is the AES-256 key size.
	KeySize = 32

	// SaltSize is the PBKDF2 salt size.
	SaltSize = 16

	// NonceSize is the AES-GCM nonce size.
	NonceSize = 12

	// DefaultIterations is the PBKDF2-SHA-256 iteration count.
	DefaultIterations = 600000

	// sealedPrefix marks a sealed value in the store.
	sealedPrefix = "enc:v1:"
)

// ErrUnsealFailed is returned when a sealed value cannot be opened, e.g.
// after the key file was replaced.
var ErrUnsealFailed = errors.New("failed to unseal stored value")

// =============================================================================
// KEY STORE
// =============================================================================

// FileKeyStore keeps the local secret in a file with 0600 permissions.
type FileKeyStore struct {
	path string
}

// NewFileKeyStore creates a key store at path.
func NewFileKeyStore(path string) *FileKeyStore {
	return &FileKeyStore{path: path}
}

// LoadOrCreate returns the stored secret, generating one on first use. The
// file holds the salt followed by the secret.
func (f *FileKeyStore) LoadOrCreate() (salt, secret []byte, err error) {
	data, err := os.ReadFile(f.path)
	if err == nil && len(data) == SaltSize+KeySize {
		return data[:SaltSize], data[SaltSize:], nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("failed to read key file: %w", err)
	}

	data = make([]byte, SaltSize+KeySize)
	if _, err := rand.Read(data); err != nil {
		return nil, nil, fmt.Errorf("failed to generate key: %w", err)
	}
	if err := util.AtomicWriteFile(f.path, data, 0600); err != nil {
		return nil, nil, fmt.Errorf("failed to write key file: %w", err)
	}
	return data[:SaltSize], data[SaltSize:], nil
}

// Delete removes the key file.
func (f *FileKeyStore) Delete() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key file: %w", err)
	}
	return nil
}

// =============================================================================
// SEALER
// =============================================================================

// Sealer encrypts short strings with AES-256-GCM. The nonce is prepended to
// the ciphertext.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a key from secret and salt with PBKDF2-SHA-256.
func NewSealer(secret, salt []byte, iterations int) (*Sealer, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	key := pbkdf2.Key(secret, salt, iterations, KeySize, sha256.New)
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// NewFileSealer loads (or creates) the key file at path and returns a Sealer.
func NewFileSealer(path string, iterations int) (*Sealer, error) {
	salt, secret, err := NewFileKeyStore(path).LoadOrCreate()
	if err != nil {
		return nil, err
	}
	return NewSealer(secret, salt, iterations)
}

// Seal encrypts plaintext and returns a prefixed base64 string.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Values without the sealed prefix are returned as is.
func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil || len(raw) < NonceSize {
		return "", ErrUnsealFailed
	}
	plain, err := s.aead.Open(nil, raw[:NonceSize], raw[NonceSize:], nil)
	if err != nil {
		return "", ErrUnsealFailed
	}
	return string(plain), nil
}

// IsSealed reports whether value was produced by Seal.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
