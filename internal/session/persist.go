package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shiplabel-dev/shiplabel/internal/models"
	"github.com/shiplabel-dev/shiplabel/internal/storage"
)

// PersistKey is the storage key holding the persisted session
const PersistKey = "persist:root"

// persisted is the part of State that outlives the process. Loading and Error describe an
// in-flight or finished request of a previous run and are not carried over.
type persisted struct {
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

func persistedOf(s State) persisted {
	return persisted{User: s.User, IsAuthenticated: s.IsAuthenticated}
}

func (p persisted) equal(o persisted) bool {
	if p.IsAuthenticated != o.IsAuthenticated {
		return false
	}
	if p.User == nil || o.User == nil {
		return p.User == nil && o.User == nil
	}
	return *p.User == *o.User
}

// Persistor writes the session to storage after every change and reads it back on start
type Persistor struct {
	storage storage.Storage
	logger  zerolog.Logger
}

func NewPersistor(st storage.Storage, logger zerolog.Logger) *Persistor {
	return &Persistor{storage: st, logger: logger}
}

// Rehydrate returns the persisted session, or the initial state when nothing usable is stored.
// Only a storage read failure is returned as an error.
func (p *Persistor) Rehydrate() (State, error) {
	data, err := p.storage.GetItem(PersistKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Initial(), nil
		}
		return Initial(), fmt.Errorf("failed to load session: %w", err)
	}

	var saved persisted
	if err := json.Unmarshal(data, &saved); err != nil {
		p.logger.Warn().Err(err).Msg("Discarding unreadable persisted session")
		return Initial(), nil
	}

	// Never rehydrate a state that claims authentication without an identity
	if saved.IsAuthenticated && saved.User == nil {
		p.logger.Warn().Msg("Discarding persisted session without user")
		return Initial(), nil
	}

	return State{User: saved.User, IsAuthenticated: saved.IsAuthenticated}, nil
}

// Save writes s to storage
func (p *Persistor) Save(s State) error {
	data, err := json.Marshal(persistedOf(s))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := p.storage.SetItem(PersistKey, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Purge removes the persisted session
func (p *Persistor) Purge() error {
	return p.storage.RemoveItem(PersistKey)
}

// Attach saves the store's state whenever its persisted part changes. The returned function
// detaches the persistor.
func (p *Persistor) Attach(store *Store) func() {
	return store.Subscribe(func(prev, next State) {
		if persistedOf(prev).equal(persistedOf(next)) {
			return
		}
		if err := p.Save(next); err != nil {
			// The in-memory session stays authoritative for this process
			p.logger.Error().Err(err).Msg("Failed to persist session")
		}
	})
}

// Open rehydrates a store from st and keeps it persisted
func Open(st storage.Storage, logger zerolog.Logger) (*Store, *Persistor, error) {
	p := NewPersistor(st, logger)

	initial, err := p.Rehydrate()
	if err != nil {
		return nil, nil, err
	}

	store := NewStore(initial, logger)
	p.Attach(store)
	return store, p, nil
}
