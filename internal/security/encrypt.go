// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package security seals the stored session credential at rest.
//
// Sealed values use AES-256-GCM with a key derived from a user passphrase
// via PBKDF2-SHA-256. Each value carries its own salt and nonce:
//
//	ENC:base64(salt | nonce | ciphertext | tag)
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// SECURITY HELPER FUNCTIONS
// =============================================================================

// ZeroBytes zeros sensitive byte slices.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks a value as sealed.
const EncryptedPrefix = "ENC:"

// NonceSize is the size of the nonce/IV for AES-GCM (12 bytes / 96 bits)
const NonceSize = 12

// KeySize is the size of the AES-256 key (32 bytes / 256 bits)
const KeySize = 32

// SaltSize is the size of the salt for key derivation (32 bytes)
const SaltSize = 32

// PBKDF2Iterations follows the OWASP 2023 recommendation for PBKDF2-SHA-256.
const PBKDF2Iterations = 600000

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoPassphrase indicates sealing was requested without a passphrase.
	ErrNoPassphrase = errors.New("credential sealing requires a passphrase (set MEDCHAT_PASSPHRASE)")
	// ErrInvalidCiphertext indicates the ciphertext format is invalid
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates decryption failed (wrong key or tampered data)
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// =============================================================================
// KEY DERIVATION
// =============================================================================

// GenerateSalt generates a cryptographically secure random salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

func deriveKey(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, KeySize, sha256.New)
}

// =============================================================================
// SEALER
// =============================================================================

// Sealer encrypts and decrypts short strings under a passphrase.
// Derived keys are cached per salt since PBKDF2 is deliberately slow.
type Sealer struct {
	passphrase string
	iterations int

	mu   sync.Mutex
	aead map[string]cipher.AEAD // salt -> cipher
}

// NewSealer returns a Sealer for passphrase.
func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}
	return &Sealer{
		passphrase: passphrase,
		iterations: PBKDF2Iterations,
		aead:       make(map[string]cipher.AEAD),
	}, nil
}

// cipherFor returns the AEAD for salt, deriving the key on first use.
func (s *Sealer) cipherFor(salt []byte) (cipher.AEAD, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gcm, ok := s.aead[string(salt)]; ok {
		return gcm, nil
	}

	key := deriveKey(s.passphrase, salt, s.iterations)
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	s.aead[string(salt)] = gcm
	return gcm, nil
}

// Seal encrypts plaintext and returns the ENC:-prefixed encoding.
func (s *Sealer) Seal(plaintext string) (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	gcm, err := s.cipherFor(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, SaltSize+NonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, []byte(plaintext), nil)

	return EncryptedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal. Values without the ENC: prefix
// are returned unchanged.
func (s *Sealer) Open(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("invalid base64 encoding: %w", err)
	}
	if len(data) < SaltSize+NonceSize {
		return "", ErrInvalidCiphertext
	}

	salt := data[:SaltSize]
	nonce := data[SaltSize : SaltSize+NonceSize]
	gcm, err := s.cipherFor(salt)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, data[SaltSize+NonceSize:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// IsEncrypted checks if a string value is encrypted (has ENC: prefix).
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}
