// Package session holds the client's identity and authentication status.
//
// State changes only through Reduce, driven by the closed set of actions below: each auth
// operation (register, login, logout) moves through pending, then fulfilled or rejected.
// Every transition produces a new State value; nothing is mutated in place.
package session

import (
	"fmt"

	"github.com/shiplabel-dev/shiplabel/internal/models"
)

// State is a snapshot of the session.
// IsAuthenticated implies User != nil. An empty Error means no error.
type State struct {
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	Loading         bool         `json:"loading"`
	Error           string       `json:"error,omitempty"`
}

// Initial returns the unauthenticated starting state
func Initial() State {
	return State{}
}

// HasRole reports whether the session is authenticated as role
func (s State) HasRole(role models.Role) bool {
	return s.IsAuthenticated && s.User != nil && s.User.Role == role
}

func (s State) clone() State {
	s.User = s.User.Clone()
	return s
}

// Op names an auth operation
type Op string

const (
	OpRegister Op = "register"
	OpLogin    Op = "login"
	OpLogout   Op = "logout"
)

// Phase is a step in an operation's lifecycle
type Phase string

const (
	Pending   Phase = "pending"
	Fulfilled Phase = "fulfilled"
	Rejected  Phase = "rejected"
)

// Action is one lifecycle transition. User is only read for a fulfilled login,
// Message only for a rejection.
type Action struct {
	Op      Op
	Phase   Phase
	User    *models.User
	Message string
}

func (a Action) String() string {
	return fmt.Sprintf("auth/%s/%s", a.Op, a.Phase)
}

func RegisterPending() Action   { return Action{Op: OpRegister, Phase: Pending} }
func RegisterFulfilled() Action { return Action{Op: OpRegister, Phase: Fulfilled} }

func RegisterRejected(message string) Action {
	return Action{Op: OpRegister, Phase: Rejected, Message: message}
}

func LoginPending() Action { return Action{Op: OpLogin, Phase: Pending} }

func LoginFulfilled(user *models.User) Action {
	return Action{Op: OpLogin, Phase: Fulfilled, User: user}
}

func LoginRejected(message string) Action {
	return Action{Op: OpLogin, Phase: Rejected, Message: message}
}

func LogoutPending() Action   { return Action{Op: OpLogout, Phase: Pending} }
func LogoutFulfilled() Action { return Action{Op: OpLogout, Phase: Fulfilled} }

func LogoutRejected(message string) Action {
	return Action{Op: OpLogout, Phase: Rejected, Message: message}
}

// Reduce applies a to s and returns the resulting state. Unknown actions leave s unchanged.
func Reduce(s State, a Action) State {
	switch a.Op {
	case OpRegister, OpLogin, OpLogout:
	default:
		return s
	}

	next := s.clone()

	switch a.Phase {
	case Pending:
		next.Loading = true
		// logout keeps the previous error visible until it settles
		if a.Op != OpLogout {
			next.Error = ""
		}

	case Fulfilled:
		next.Loading = false
		switch a.Op {
		case OpLogin:
			// A login without a user record cannot authenticate anyone
			if a.User == nil {
				break
			}
			next.User = a.User.Clone()
			next.IsAuthenticated = true
		case OpLogout:
			next = Initial()
		}

	case Rejected:
		next.Loading = false
		next.Error = a.Message

	default:
		return s
	}

	return next
}
