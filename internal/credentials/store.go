package credentials

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "shiplabel-cli"
)

// ErrNotFound is returned by Load when nothing is stored for a host
var ErrNotFound = errors.New("no stored credentials")

// Store persists opaque credential blobs per API host.
// This allows us to mock the keyring in tests.
type Store interface {
	Save(host string, data []byte) error
	Load(host string) ([]byte, error)
	Delete(host string) error
}

// keyringStore implements Store using the OS keyring
type keyringStore struct{}

// Default keeps credentials in the OS keychain/credential manager
var Default Store = keyringStore{}

// getKeyringKey returns a unique key for storing cookies per API host
func getKeyringKey(host string) string {
	return fmt.Sprintf("cookies-%s", host)
}

func (keyringStore) Save(host string, data []byte) error {
	if err := keyring.Set(service, getKeyringKey(host), string(data)); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func (keyringStore) Load(host string) ([]byte, error) {
	secret, err := keyring.Get(service, getKeyringKey(host))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return []byte(secret), nil
}

func (keyringStore) Delete(host string) error {
	if err := keyring.Delete(service, getKeyringKey(host)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

// memoryStore keeps credentials for the life of the process
type memoryStore struct {
	data map[string][]byte
}

// NewMemoryStore returns a Store that forgets everything on exit
func NewMemoryStore() Store {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) Save(host string, data []byte) error {
	m.data[host] = append([]byte(nil), data...)
	return nil
}

func (m *memoryStore) Load(host string) ([]byte, error) {
	d, ok := m.data[host]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *memoryStore) Delete(host string) error {
	delete(m.data, host)
	return nil
}
