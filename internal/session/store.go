package session

import (
	"sync"

	"github.com/rs/zerolog"
)

// Listener observes every state produced by Dispatch
type Listener func(prev, next State)

// Store is the single owner of the session state
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
	logger    zerolog.Logger
}

// NewStore creates a store holding initial
func NewStore(initial State, logger zerolog.Logger) *Store {
	return &Store{
		state:     initial.clone(),
		listeners: make(map[int]Listener),
		logger:    logger,
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies a and returns the new state.
//
// Transitions are applied one at a time in the order Dispatch is called, and listeners run
// before the next transition starts. Listeners must not call Dispatch.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state = Reduce(prev, a)

	s.logger.Debug().
		Str("action", a.String()).
		Bool("authenticated", s.state.IsAuthenticated).
		Bool("loading", s.state.Loading).
		Msg("Session transition")

	for _, l := range s.listeners {
		l(prev.clone(), s.state.clone())
	}

	return s.state.clone()
}

// Subscribe registers l and returns a function that removes it
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
