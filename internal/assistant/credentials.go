package assistant

import (
	"fmt"

	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/zalando/go-keyring"
)

// PasswordStore keeps the passwords of vCard servers, keyed by user name.
type PasswordStore interface {
	Get(user string) (string, error)
	Set(user, password string) error
}

// KeyringStore stores passwords in the OS secret service.
type KeyringStore struct {
	Service string
}

// NewKeyringStore returns a store bound to the application's keyring service.
func NewKeyringStore() KeyringStore {
	return KeyringStore{Service: config.KeyringService}
}

func (k KeyringStore) Get(user string) (string, error) {
	pass, err := keyring.Get(k.Service, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	return pass, nil
}

func (k KeyringStore) Set(user, password string) error {
	if err := keyring.Set(k.Service, user, password); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	return nil
}
