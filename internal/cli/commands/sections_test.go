package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shiplabel-dev/shiplabel/internal/client"
	"github.com/shiplabel-dev/shiplabel/internal/models"
	"github.com/shiplabel-dev/shiplabel/internal/notify"
	"github.com/shiplabel-dev/shiplabel/internal/validation"
)

func TestSectionGuards(t *testing.T) {
	tests := []struct {
		name     string
		user     *models.User
		args     []string
		redirect bool
	}{
		{"anonymous main", nil, []string{"main", "orders"}, true},
		{"anonymous admin", nil, []string{"admin", "dashboard"}, true},
		{"user main", &annUser, []string{"main", "account"}, false},
		{"user admin", &annUser, []string{"admin", "users", "ls"}, true},
		{"admin main", &adminUser, []string{"main", "account"}, true},
		{"admin admin", &adminUser, []string{"admin", "users", "ls"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.user)

			err := env.run(tt.args...)

			var redirect *RedirectError
			if tt.redirect {
				require.True(t, errors.As(err, &redirect), "expected redirect, got %v", err)
				assert.Equal(t, "/login", redirect.To)
				assert.Zero(t, env.api.requestCount(), "a denied page must not reach the API")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRedirectError_NamesTheRequestedPage(t *testing.T) {
	env := newTestEnv(t, nil)

	err := env.run("admin", "users", "toggle-access", "u1")

	var redirect *RedirectError
	require.True(t, errors.As(err, &redirect))
	assert.Equal(t, "/admin/users", redirect.Path)
	assert.Contains(t, err.Error(), "shiplabel login")
}

func TestUserDashboardCommand(t *testing.T) {
	env := newTestEnv(t, &annUser)

	require.NoError(t, env.run("main", "dashboard"))
	assert.Contains(t, env.output(), "Welcome, Ann")
	assert.Contains(t, env.output(), "/main/order-label")
	assert.Contains(t, env.output(), "/main/batch-orders")
}

func TestAccountCommand(t *testing.T) {
	env := newTestEnv(t, &annUser)

	require.NoError(t, env.run("main", "account"))
	assert.Regexp(t, `Email:\s+ann@example.com`, env.output())
	assert.Regexp(t, `Role:\s+user`, env.output())
}

func TestServicesCommand(t *testing.T) {
	env := newTestEnv(t, &annUser)

	require.NoError(t, env.run("main", "services"))
	assert.Regexp(t, `FedEx\s+price=15`, env.output())
	assert.Regexp(t, `UPS Ground\s+price=12`, env.output())
}

func TestOrdersCommand(t *testing.T) {
	env := newTestEnv(t, &annUser)

	require.NoError(t, env.run("main", "orders"))
	assert.Contains(t, env.output(), "UPS Ground")
	assert.Contains(t, env.output(), "Ann (Acme)")
	assert.Contains(t, env.output(), "Bob (Widgets)")
	assert.Contains(t, env.output(), "1Z999")
}

func TestOrdersCommand_Empty(t *testing.T) {
	other := annUser
	other.ID = "u9"
	env := newTestEnv(t, &other)

	require.NoError(t, env.run("main", "orders"))
	assert.Contains(t, env.output(), "No orders found.")
}

const validOrder = `
sender:
  name: Ann
  phone: "555-0100"
  company: Acme
  street: 1 Main St
  city: Springfield
  state: IL
  zip: "62701"
receiver:
  name: Bob
  phone: "555-0199"
  company: Widgets
  street: 9 Elm St
  street2: Suite 4
  city: Portland
  state: OR
  zip: "97201"
package:
  weight: "2.5"
  length: "10"
  width: "8"
  height: "4"
  description: Books
  requireSignature: true
`

func TestOrderLabelCommand(t *testing.T) {
	env := newTestEnv(t, &annUser)
	path := writeOrderFile(t, validOrder)

	require.NoError(t, env.run("main", "order-label", "--file", path))

	var sent client.CreateShipmentRequest
	env.api.body(t, "POST /order-label/create-shipment", &sent)
	assert.Equal(t, "u1", sent.UserID)
	assert.Equal(t, models.DefaultServiceType, sent.FormData.Package.ServiceType)
	assert.Equal(t, "Suite 4", sent.FormData.Receiver.Street2)
	assert.True(t, sent.FormData.Package.RequireSignature)
	assert.Equal(t, []notify.Notification{{Success: true, Message: "Shipment created"}}, env.notified.All())
}

func TestOrderLabelCommand_ServiceOverride(t *testing.T) {
	env := newTestEnv(t, &annUser)
	path := writeOrderFile(t, validOrder)

	require.NoError(t, env.run("main", "order-label", "-f", path, "--service", "FedEx"))

	var sent client.CreateShipmentRequest
	env.api.body(t, "POST /order-label/create-shipment", &sent)
	assert.Equal(t, "FedEx", sent.FormData.Package.ServiceType)
}

func TestOrderLabelCommand_ValidationErrors(t *testing.T) {
	env := newTestEnv(t, &annUser)
	path := writeOrderFile(t, `
package:
  weight: heavy
  length: "0"
`)

	err := env.run("main", "order-label", "--file", path)

	var verr *validation.Errors
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Messages, "Sender name is required.")
	assert.Contains(t, verr.Messages, "Package weight must be a valid number.")
	assert.Contains(t, verr.Messages, "Package length must be greater than 0.")
	assert.Zero(t, env.api.requestCount())
}

func TestOrderLabelCommand_Template(t *testing.T) {
	env := newTestEnv(t, &annUser)

	require.NoError(t, env.run("main", "order-label", "--template"))

	var form models.ShipmentForm
	require.NoError(t, yaml.Unmarshal([]byte(env.output()), &form))
	assert.Equal(t, models.NewShipmentForm(), form)
}

func TestOrderLabelCommand_RequiresFile(t *testing.T) {
	env := newTestEnv(t, &annUser)
	assert.ErrorContains(t, env.run("main", "order-label"), "--file is required")
}

func TestAdminDashboardCommand(t *testing.T) {
	env := newTestEnv(t, &adminUser)

	require.NoError(t, env.run("admin", "dashboard"))
	assert.Contains(t, env.output(), "Welcome, Ada")
	assert.Contains(t, env.output(), "/admin/users")
	assert.Contains(t, env.output(), "Users: 2 (1 admins, 2 with service access)")
}

func TestUsersListCommand(t *testing.T) {
	env := newTestEnv(t, &adminUser)

	require.NoError(t, env.run("admin", "users", "ls"))
	assert.Regexp(t, `u1\s+Ann\s+ann@example.com\s+user\s+yes`, env.output())
	assert.Regexp(t, `a1\s+Ada\s+ada@example.com\s+admin\s+yes`, env.output())
}

func TestSetRoleCommand(t *testing.T) {
	env := newTestEnv(t, &adminUser)

	require.NoError(t, env.run("admin", "users", "set-role", "u1", "admin"))

	var sent map[string]any
	env.api.body(t, "PUT /user/update/u1", &sent)
	assert.Equal(t, map[string]any{"user_role": "admin"}, sent)
	assert.Equal(t, []notify.Notification{{Success: true, Message: "User updated"}}, env.notified.All())
}

func TestSetRoleCommand_Invalid(t *testing.T) {
	env := newTestEnv(t, &adminUser)

	assert.ErrorContains(t, env.run("admin", "users", "set-role", "u1", "owner"), `invalid role "owner"`)
	assert.ErrorContains(t, env.run("admin", "users", "set-role", "u1"), "non-interactive")
	assert.Zero(t, env.api.requestCount())
}

func TestToggleAccessCommand(t *testing.T) {
	env := newTestEnv(t, &adminUser)

	require.NoError(t, env.run("admin", "users", "toggle-access", "u1"))

	var sent map[string]any
	env.api.body(t, "PUT /user/update/u1", &sent)
	assert.Equal(t, map[string]any{"hasAccess": false}, sent)
	assert.Contains(t, env.output(), "ann@example.com access: no")
}

func TestToggleAccessCommand_UnknownUser(t *testing.T) {
	env := newTestEnv(t, &adminUser)
	assert.ErrorContains(t, env.run("admin", "users", "toggle-access", "zz"), "user zz not found")
}

func TestDeleteUserCommand(t *testing.T) {
	env := newTestEnv(t, &adminUser)

	require.NoError(t, env.run("admin", "users", "rm", "u1"))

	err := env.run("admin", "users", "rm", "missing")
	var reportedErr *ReportedError
	require.True(t, errors.As(err, &reportedErr))

	assert.Equal(t, []notify.Notification{
		{Success: true, Message: "User deleted successfully."},
		{Message: "User not found"},
	}, env.notified.All())
}
