// Package credential keeps secrets in the system keyring: the login
// passcode hash and the IMAP password used for timesheet submission.
package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "timesheet"

// Keys stored in the keyring.
const (
	KeyPasscode     = "login-passcode"
	KeyIMAPPassword = "imap-password"
)

// ErrNotFound is returned when no secret is stored under a key.
var ErrNotFound = errors.New("credential not found")

// ErrWrongPasscode is returned when a passcode does not match.
var ErrWrongPasscode = errors.New("wrong passcode")

// Vault reads and writes secrets in a keyring.
type Vault struct {
	ring keyring.Keyring
}

// NewVault wraps an open keyring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Open returns a Vault backed by the system keyring, falling back to an
// encrypted file under ~/.config/timesheet/credentials.
func Open() (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/timesheet/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("timesheet-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewVault(ring), nil
}

// Get retrieves a secret by key.
func (v *Vault) Get(key string) (string, error) {
	item, err := v.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a secret by key.
func (v *Vault) Set(key, value string) error {
	err := v.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "timesheet " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a secret. Deleting a missing key is not an error.
func (v *Vault) Delete(key string) error {
	err := v.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// HasPasscode reports whether a login passcode has been set.
func (v *Vault) HasPasscode() (bool, error) {
	_, err := v.Get(KeyPasscode)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// SetPasscode stores the hash of a new login passcode.
func (v *Vault) SetPasscode(passcode string) error {
	if passcode == "" {
		return errors.New("passcode must not be empty")
	}
	return v.Set(KeyPasscode, hashPasscode(passcode))
}

// CheckPasscode compares passcode with the stored hash.
func (v *Vault) CheckPasscode(passcode string) error {
	stored, err := v.Get(KeyPasscode)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashPasscode(passcode))) != 1 {
		return ErrWrongPasscode
	}
	return nil
}

func hashPasscode(passcode string) string {
	sum := sha256.Sum256([]byte(serviceName + ":" + passcode))
	return hex.EncodeToString(sum[:])
}
