package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lunara/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore map[string]json.RawMessage

func (m memStore) GetItem(key string) (json.RawMessage, bool) {
	v, ok := m[key]
	return v, ok
}

func (m memStore) SetItem(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m[key] = raw
	return nil
}

func (m memStore) RemoveItem(key string) error {
	delete(m, key)
	return nil
}

type stubAuth struct {
	loginResp    *models.AuthResponse
	registerResp *models.AuthResponse
	err          error
	logoutErr    error

	logins    []models.LoginRequest
	registers []models.RegisterRequest
	logouts   int
}

func (s *stubAuth) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	s.logins = append(s.logins, req)
	return s.loginResp, s.err
}

func (s *stubAuth) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	s.registers = append(s.registers, req)
	return s.registerResp, s.err
}

func (s *stubAuth) Logout(ctx context.Context) error {
	s.logouts++
	return s.logoutErr
}

func TestAuthRestoresSavedUser(t *testing.T) {
	store := memStore{CurrentUserKey: json.RawMessage(`{"name":"Asha Rao","email":"asha@example.com"}`)}
	as := NewAuthService(&stubAuth{}, store, nil)

	user := as.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "Asha", user.FirstName())

	corrupt := memStore{CurrentUserKey: json.RawMessage(`"not a user`)}
	assert.Nil(t, NewAuthService(&stubAuth{}, corrupt, nil).CurrentUser())
}

func TestLoginSuccessPersistsUser(t *testing.T) {
	backend := &stubAuth{loginResp: &models.AuthResponse{Success: true, User: &models.User{Name: "Asha Rao", Email: "asha@example.com"}}}
	store := memStore{}
	as := NewAuthService(backend, store, nil)

	result, err := as.Login(context.Background(), "  asha@example.com ", "secret1", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome back, Asha!", result.Notification.Message)
	assert.Equal(t, models.PageHome, result.Redirect)
	require.Len(t, backend.logins, 1)
	assert.Equal(t, "asha@example.com", backend.logins[0].Email)

	require.Contains(t, store, CurrentUserKey)
	var saved models.User
	require.NoError(t, json.Unmarshal(store[CurrentUserKey], &saved))
	assert.Equal(t, "asha@example.com", saved.Email)
	assert.Equal(t, "Asha Rao", as.CurrentUser().Name)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		resp     *models.AuthResponse
		err      error
		wantKind ErrorKind
		wantMsg  string
	}{
		{"server message", &models.AuthResponse{Message: "Account locked"}, nil, KindRejected, "Account locked"},
		{"generic", &models.AuthResponse{}, nil, KindRejected, "Invalid email or password"},
		{"transport", nil, errors.New("dial tcp: refused"), KindTransport, "Login failed. Please try again."},
		{"success without user", &models.AuthResponse{Success: true}, nil, KindTransport, "Login failed. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memStore{}
			as := NewAuthService(&stubAuth{loginResp: tt.resp, err: tt.err}, store, nil)

			_, err := as.Login(context.Background(), "asha@example.com", "wrong", "127.0.0.1")
			se := requireKind(t, err, tt.wantKind)
			assert.Equal(t, tt.wantMsg, se.Message)
			assert.Equal(t, models.NotifyError, se.Level)
			assert.Nil(t, as.CurrentUser())
			assert.Empty(t, store)
		})
	}
}

func TestValidateRegistrationOrder(t *testing.T) {
	valid := RegistrationForm{Name: "Asha", Email: "asha@example.com", Password: "secret1", ConfirmPassword: "secret1"}

	tests := []struct {
		name      string
		mutate    func(f *RegistrationForm)
		wantField string
		wantMsg   string
	}{
		{"short name", func(f *RegistrationForm) { f.Name = " A " }, "name", "Name must be at least 2 characters"},
		{"name checked before email", func(f *RegistrationForm) { f.Name = ""; f.Email = "bad" }, "name", "Name must be at least 2 characters"},
		{"bad email", func(f *RegistrationForm) { f.Email = "asha@example" }, "email", "Please enter a valid email address"},
		{"email with space", func(f *RegistrationForm) { f.Email = "asha rao@example.com" }, "email", "Please enter a valid email address"},
		{"short password", func(f *RegistrationForm) { f.Password = "12345"; f.ConfirmPassword = "12345" }, "password", "Password must be at least 6 characters"},
		{"mismatch", func(f *RegistrationForm) { f.ConfirmPassword = "secret2" }, "confirmPassword", "Passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			err := ValidateRegistration(form)
			require.ErrorIs(t, err, ErrInvalidForm)
			se := requireKind(t, err, KindValidation)
			assert.Equal(t, tt.wantField, se.Field)
			assert.Equal(t, tt.wantMsg, se.Message)
		})
	}

	assert.NoError(t, ValidateRegistration(valid))
}

func TestRegister(t *testing.T) {
	t.Run("invalid form makes no call", func(t *testing.T) {
		backend := &stubAuth{}
		as := NewAuthService(backend, memStore{}, nil)
		_, err := as.Register(context.Background(), RegistrationForm{Name: "Asha", Email: "x"}, "")
		assert.ErrorIs(t, err, ErrInvalidForm)
		assert.Empty(t, backend.registers)
	})

	t.Run("success", func(t *testing.T) {
		backend := &stubAuth{registerResp: &models.AuthResponse{Success: true, User: &models.User{Name: "Asha", Email: "asha@example.com"}}}
		store := memStore{}
		as := NewAuthService(backend, store, nil)

		result, err := as.Register(context.Background(), RegistrationForm{
			Name: " Asha ", Email: " asha@example.com", Password: "secret1", ConfirmPassword: "secret1",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, "Account created successfully!", result.Notification.Message)
		require.Len(t, backend.registers, 1)
		assert.Equal(t, models.RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "secret1"}, backend.registers[0])
		assert.Contains(t, store, CurrentUserKey)
	})

	t.Run("rejected", func(t *testing.T) {
		backend := &stubAuth{registerResp: &models.AuthResponse{Message: "Email already registered"}}
		as := NewAuthService(backend, memStore{}, nil)
		_, err := as.Register(context.Background(), RegistrationForm{
			Name: "Asha", Email: "asha@example.com", Password: "secret1", ConfirmPassword: "secret1",
		}, "")
		se := requireKind(t, err, KindRejected)
		assert.ErrorIs(t, err, ErrRegistration)
		assert.Equal(t, "Email already registered", se.Message)
		assert.Equal(t, "email", se.Field)
		assert.Nil(t, as.CurrentUser())
	})

	t.Run("transport", func(t *testing.T) {
		as := NewAuthService(&stubAuth{err: errors.New("timeout")}, memStore{}, nil)
		_, err := as.Register(context.Background(), RegistrationForm{
			Name: "Asha", Email: "asha@example.com", Password: "secret1", ConfirmPassword: "secret1",
		}, "")
		se := requireKind(t, err, KindTransport)
		assert.Equal(t, "Registration failed. Please try again.", se.Message)
	})
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "security.log")
	audit, err := NewSecurityLogger(path)
	require.NoError(t, err)

	backend := &stubAuth{logoutErr: errors.New("backend down")}
	store := memStore{CurrentUserKey: json.RawMessage(`{"name":"Asha Rao","email":"asha@example.com"}`)}
	as := NewAuthService(backend, store, audit)

	result := as.Logout(context.Background(), "10.1.1.1")
	assert.Equal(t, models.Notification{Message: "You have been logged out successfully", Type: models.NotifySuccess}, result.Notification)
	assert.Equal(t, models.PageHome, result.Redirect)
	assert.Equal(t, 1, backend.logouts)
	assert.Nil(t, as.CurrentUser())
	assert.NotContains(t, store, CurrentUserKey)

	require.NoError(t, audit.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "LOGOUT - email=asha@example.com - IP: 10.1.1.1"))
}
