package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiplabel-dev/shiplabel/internal/app"
	"github.com/shiplabel-dev/shiplabel/internal/config"
	"github.com/shiplabel-dev/shiplabel/internal/credentials"
	"github.com/shiplabel-dev/shiplabel/internal/models"
	"github.com/shiplabel-dev/shiplabel/internal/notify"
	"github.com/shiplabel-dev/shiplabel/internal/session"
	"github.com/shiplabel-dev/shiplabel/internal/storage"
)

var (
	annUser   = models.User{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: models.RoleUser}
	adminUser = models.User{ID: "a1", Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin}
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var form models.LoginForm
		json.NewDecoder(r.Body).Decode(&form)
		switch {
		case form.Email == adminUser.Email && form.Password == "secret1":
			writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user": adminUser})
		case form.Email == annUser.Email && form.Password == "secret1":
			writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user": annUser})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
		}
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully"})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
	})
	mux.HandleFunc("GET /user/get", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"users": []models.User{annUser, adminUser}})
	})
	mux.HandleFunc("PUT /user/update/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "User updated"})
	})
	mux.HandleFunc("DELETE /user/delete/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "Cannot delete yourself"})
	})
	mux.HandleFunc("GET /order-label/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"orders": []any{
			map[string]any{"_id": "o1", "service_name": "UPS Ground", "tracking_number": "1Z999"},
		}})
	})
	mux.HandleFunc("GET /order-label/shipment-services", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	})
	mux.HandleFunc("POST /order-label/create-shipment", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Shipment created"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type fixture struct {
	app      *app.App
	server   *Server
	notified *notify.Recorder
}

func newFixture(t *testing.T, user *models.User) *fixture {
	t.Helper()
	api := fakeAPI(t)

	cfg := config.Default()
	cfg.APIURL = api.URL
	cfg.Storage.Backend = storage.BackendMemory

	rec := &notify.Recorder{}
	a, err := app.New(app.Options{
		Config:      cfg,
		Logger:      zerolog.Nop(),
		Notifier:    rec,
		Storage:     storage.NewMemory(),
		Credentials: credentials.NewMemoryStore(),
	})
	require.NoError(t, err)

	if user != nil {
		a.Store.Dispatch(session.LoginFulfilled(user))
	}

	return &fixture{app: a, server: New(a, zerolog.Nop(), "test"), notified: rec}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestGuardedPagesRedirectToLogin(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		path string
	}{
		{"anonymous main index", nil, "/main"},
		{"anonymous main page", nil, "/main/orders"},
		{"anonymous unknown main page", nil, "/main/does-not-exist"},
		{"user on admin", &annUser, "/admin/dashboard"},
		{"user on unknown admin page", &annUser, "/admin/secret"},
		{"admin on main", &adminUser, "/main/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.user)

			w := f.do(t, http.MethodGet, tt.path, nil)

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/login", w.Header().Get("Location"))
		})
	}
}

func TestGuardedMutationsRedirectToLogin(t *testing.T) {
	f := newFixture(t, &annUser)

	w := f.do(t, http.MethodDelete, "/admin/users/u1", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Empty(t, f.notified.All())
}

func TestPages(t *testing.T) {
	f := newFixture(t, &annUser)

	w := f.do(t, http.MethodGet, "/main", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page PageResponse
	decode(t, w, &page)
	assert.Equal(t, "dashboard", page.Page)
	assert.Equal(t, "/main", page.Section)
	assert.True(t, page.Session.IsAuthenticated)
	assert.Nil(t, page.Session.Error)

	w = f.do(t, http.MethodGet, "/main/deposit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.Equal(t, "deposit", page.Page)

	w = f.do(t, http.MethodGet, "/main/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/register", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = PageResponse{}
	decode(t, w, &page)
	assert.Equal(t, "register", page.Page)
	assert.Empty(t, page.Section)
}

func TestOrdersPageCarriesOrders(t *testing.T) {
	f := newFixture(t, &annUser)

	w := f.do(t, http.MethodGet, "/main/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Page string `json:"page"`
		Data struct {
			Orders []models.Order `json:"orders"`
		} `json:"data"`
	}
	decode(t, w, &page)
	assert.Equal(t, "orders", page.Page)
	require.Len(t, page.Data.Orders, 1)
	assert.Equal(t, "1Z999", page.Data.Orders[0].TrackingNumber)
}

func TestOrderLabelPage_APIFailure(t *testing.T) {
	f := newFixture(t, &annUser)

	w := f.do(t, http.MethodGet, "/main/order-label", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Something went wrong."}`, w.Body.String())
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/login", models.LoginForm{Email: "ada@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		User     models.User `json:"user"`
		Redirect string      `json:"redirect"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "a1", resp.User.ID)
	assert.Equal(t, "/admin/dashboard", resp.Redirect)

	w = f.do(t, http.MethodGet, "/admin/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ann@example.com")

	w = f.do(t, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"redirect":"/login"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	assert.Equal(t, []notify.Notification{
		{Success: true, Message: "Login successful"},
		{Success: true, Message: "Logged out successfully"},
	}, f.notified.All())
}

func TestLogin_Rejected(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/login", models.LoginForm{Email: "ann@example.com", Password: "wrong12"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Invalid credentials"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/session", nil)
	var view SessionView
	decode(t, w, &view)
	assert.False(t, view.IsAuthenticated)
	require.NotNil(t, view.Error)
	assert.Equal(t, "Invalid credentials", *view.Error)
}

func TestLogin_ValidationFailure(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/login", models.LoginForm{Email: "ann@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please fill out all required fields")
	assert.Equal(t, session.Initial(), f.app.Session())
}

func TestRegister(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/register", models.RegisterForm{
		Name: "Bea", Email: "bea@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"redirect":"/login"}`, w.Body.String())
	assert.False(t, f.app.Session().IsAuthenticated)
}

func TestCreateShipment(t *testing.T) {
	f := newFixture(t, &annUser)

	form := models.NewShipmentForm()
	w := f.do(t, http.MethodPost, "/main/order-label", form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Sender name is required.")

	addr := models.Address{Name: "A", Phone: "1", Company: "C", Street: "S", City: "X", State: "Y", Zip: "Z"}
	form.Sender, form.Receiver = addr, addr
	form.Package.Weight, form.Package.Length, form.Package.Width, form.Package.Height = "1", "2", "3", "4"
	form.Package.Description = "Books"

	w = f.do(t, http.MethodPost, "/main/order-label", form)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"Shipment created"}`, w.Body.String())
}

func TestUserManagement(t *testing.T) {
	f := newFixture(t, &adminUser)

	w := f.do(t, http.MethodPut, "/admin/users/u1", map[string]any{"user_role": "admin"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPut, "/admin/users/u1", map[string]any{"user_role": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPut, "/admin/users/u1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodDelete, "/admin/users/a1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Cannot delete yourself"}`, w.Body.String())

	assert.Equal(t, []notify.Notification{
		{Success: true, Message: "User updated"},
		{Message: "Cannot delete yourself"},
	}, f.notified.All())
}

func TestCORS(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/session", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestServe_ShutsDownWhenContextEnds(t *testing.T) {
	f := newFixture(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
