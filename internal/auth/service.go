// Package auth runs the register, login and logout operations against the API and records
// their lifecycle in the session store.
//
// Each operation dispatches pending, sends exactly one request, dispatches fulfilled or
// rejected, and emits exactly one notification. Transport failures and API errors both end in
// the rejected transition.
//
// Operations are not serialized against each other. When two overlap, the session reflects
// whichever response arrived last, regardless of which request was sent first.
package auth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/shiplabel-dev/shiplabel/internal/client"
	"github.com/shiplabel-dev/shiplabel/internal/models"
	"github.com/shiplabel-dev/shiplabel/internal/notify"
	"github.com/shiplabel-dev/shiplabel/internal/session"
)

// MissingUserMessage is reported when a successful login response has no user record
const MissingUserMessage = "Login response did not include a user"

// API is the part of the HTTP client the operations need
type API interface {
	Register(ctx context.Context, form models.RegisterForm) (*client.MessageResponse, error)
	Login(ctx context.Context, form models.LoginForm) (*client.LoginResponse, error)
	Logout(ctx context.Context) (*client.MessageResponse, error)
}

// CredentialClearer forgets the locally held API credentials
type CredentialClearer interface {
	Clear() error
}

// Error is a rejected operation. The user has already been notified of Message.
type Error struct {
	Op      session.Op
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Service performs auth operations
type Service struct {
	api         API
	store       *session.Store
	notifier    notify.Notifier
	credentials CredentialClearer
	logger      zerolog.Logger
}

// NewService creates an auth service writing into store
func NewService(api API, store *session.Store, notifier notify.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		api:      api,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// SetCredentials makes a successful logout also clear the local credentials
func (s *Service) SetCredentials(c CredentialClearer) {
	s.credentials = c
}

// Session returns the current session snapshot
func (s *Service) Session() session.State {
	return s.store.Snapshot()
}

// Register creates an account. It does not log the user in. The form must already be
// validated.
func (s *Service) Register(ctx context.Context, form models.RegisterForm) error {
	s.store.Dispatch(session.RegisterPending())

	resp, err := s.api.Register(ctx, form)
	if err != nil {
		return s.reject(session.OpRegister, err, session.RegisterRejected)
	}

	s.store.Dispatch(session.RegisterFulfilled())
	s.notifier.Success(resp.Message)
	s.logger.Info().Str("email", form.Email).Msg("Registered")
	return nil
}

// Login authenticates and makes the returned user the session identity. The form must
// already be validated.
func (s *Service) Login(ctx context.Context, form models.LoginForm) (*models.User, error) {
	s.store.Dispatch(session.LoginPending())

	resp, err := s.api.Login(ctx, form)
	if err != nil {
		return nil, s.reject(session.OpLogin, err, session.LoginRejected)
	}
	if resp.User == nil {
		return nil, s.rejectMessage(session.OpLogin, MissingUserMessage, nil, session.LoginRejected)
	}

	s.store.Dispatch(session.LoginFulfilled(resp.User))
	s.notifier.Success(resp.Message)
	s.logger.Info().Str("user_id", resp.User.ID).Str("role", string(resp.User.Role)).Msg("Logged in")
	return resp.User.Clone(), nil
}

// Logout ends the session. On failure the session identity is kept.
func (s *Service) Logout(ctx context.Context) error {
	s.store.Dispatch(session.LogoutPending())

	resp, err := s.api.Logout(ctx)
	if err != nil {
		return s.reject(session.OpLogout, err, session.LogoutRejected)
	}

	s.store.Dispatch(session.LogoutFulfilled())
	if s.credentials != nil {
		if err := s.credentials.Clear(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to clear stored credentials")
		}
	}
	s.notifier.Success(resp.Message)
	s.logger.Info().Msg("Logged out")
	return nil
}

func (s *Service) reject(op session.Op, err error, rejected func(string) session.Action) error {
	return s.rejectMessage(op, client.Message(err), err, rejected)
}

func (s *Service) rejectMessage(op session.Op, msg string, err error, rejected func(string) session.Action) error {
	s.store.Dispatch(rejected(msg))
	s.notifier.Error(msg)
	s.logger.Debug().Err(err).Str("op", string(op)).Msg("Auth operation rejected")
	return &Error{Op: op, Message: msg, Err: err}
}
