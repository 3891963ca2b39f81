// Package guard decides whether a navigation into a protected section may proceed.
//
// Guards are navigation convenience, not access control: the API authorizes every call on
// its own. A guard only looks at the session snapshot it is given; it never validates
// tokens or talks to the network.
package guard

import (
	"github.com/shiplabel-dev/shiplabel/internal/models"
	"github.com/shiplabel-dev/shiplabel/internal/session"
)

// LoginPath is where denied navigations are sent. The originally requested path is dropped.
const LoginPath = "/login"

// Decision is the outcome of a guard. Redirect is set iff Allowed is false.
type Decision struct {
	Allowed  bool
	Redirect string
}

var allow = Decision{Allowed: true}

// Guard is a pure predicate over a session snapshot
type Guard func(session.State) Decision

// RequireRole permits sessions authenticated as role
func RequireRole(role models.Role) Guard {
	return func(s session.State) Decision {
		if s.HasRole(role) {
			return allow
		}
		return Decision{Redirect: LoginPath}
	}
}

var (
	// User gates the /main section
	User = RequireRole(models.RoleUser)
	// Admin gates the /admin section
	Admin = RequireRole(models.RoleAdmin)
)
