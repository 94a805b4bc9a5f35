package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"

	"lunara/internal/models"
)

// CurrentUserKey is the storage key of the persisted session user.
const CurrentUserKey = "lunaraCurrentUser"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// AuthBackend is the remote authentication API.
type AuthBackend interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
}

// KeyValueStore persists small JSON values for one page session.
type KeyValueStore interface {
	GetItem(key string) (json.RawMessage, bool)
	SetItem(key string, value interface{}) error
	RemoveItem(key string) error
}

// RegistrationForm is the signup form as typed.
type RegistrationForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// AuthResult is the outcome of an auth action.
type AuthResult struct {
	Notification models.Notification `json:"notification"`
	Redirect     models.Page         `json:"redirect,omitempty"`
	User         *models.User        `json:"user,omitempty"`
}

// AuthService keeps the session's Current User. The user object returned by
// the backend is trusted and persisted as is; nothing here re-verifies it.
type AuthService struct {
	mu      sync.RWMutex
	backend AuthBackend
	store   KeyValueStore
	audit   *SecurityLogger
	user    *models.User
}

// NewAuthService restores the persisted user from store, if any. An
// unreadable entry is treated as logged out.
func NewAuthService(backend AuthBackend, store KeyValueStore, audit *SecurityLogger) *AuthService {
	as := &AuthService{backend: backend, store: store, audit: audit}
	if raw, ok := store.GetItem(CurrentUserKey); ok {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			log.Printf("AuthService - Could not parse saved user: %v", err)
		} else {
			as.user = &u
		}
	}
	return as
}

// CurrentUser returns a copy of the logged in user, or nil.
func (as *AuthService) CurrentUser() *models.User {
	as.mu.RLock()
	defer as.mu.RUnlock()
	if as.user == nil {
		return nil
	}
	u := *as.user
	return &u
}

// Login authenticates with the backend and stores the returned user.
func (as *AuthService) Login(ctx context.Context, email, password, ip string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	log.Printf("AuthService.Login - Email: %s", email)

	resp, err := as.backend.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err == nil && resp.Success && resp.User == nil {
		err = fmt.Errorf("login response without user")
	}
	if err != nil {
		log.Printf("AuthService.Login - Transport error: %v", err)
		return AuthResult{}, transportError("Login failed. Please try again.", err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "Invalid email or password"
		}
		as.audit.LogSecurityEvent(EventLoginFailed, "email="+email, ip)
		rerr := rejectedError(msg, ErrInvalidCredentials)
		rerr.Field = "password"
		return AuthResult{}, rerr
	}

	user := as.setUser(resp.User)
	as.audit.LogSecurityEvent(EventLoginSuccess, "email="+email, ip)
	return AuthResult{
		Notification: success(fmt.Sprintf("Welcome back, %s!", user.FirstName())),
		Redirect:     models.PageHome,
		User:         user,
	}, nil
}

// ValidateRegistration runs the signup form checks in order and reports the
// first failure with its field.
func ValidateRegistration(form RegistrationForm) error {
	name := strings.TrimSpace(form.Name)
	email := strings.TrimSpace(form.Email)

	if len([]rune(name)) < 2 {
		return fieldError("name", "Name must be at least 2 characters")
	}
	if !ValidEmail(email) {
		return fieldError("email", "Please enter a valid email address")
	}
	if len([]rune(form.Password)) < 6 {
		return fieldError("password", "Password must be at least 6 characters")
	}
	if form.Password != form.ConfirmPassword {
		return fieldError("confirmPassword", "Passwords do not match")
	}
	return nil
}

// Register validates the form locally, then creates the account.
func (as *AuthService) Register(ctx context.Context, form RegistrationForm, ip string) (AuthResult, error) {
	if err := ValidateRegistration(form); err != nil {
		log.Printf("AuthService.Register - Validation failed: %v", err)
		return AuthResult{}, err
	}

	req := models.RegisterRequest{
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
	}
	log.Printf("AuthService.Register - Email: %s", req.Email)

	resp, err := as.backend.Register(ctx, req)
	if err == nil && resp.Success && resp.User == nil {
		err = fmt.Errorf("register response without user")
	}
	if err != nil {
		log.Printf("AuthService.Register - Transport error: %v", err)
		return AuthResult{}, transportError("Registration failed. Please try again.", err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "Registration failed"
		}
		as.audit.LogSecurityEvent(EventRegisterFailed, "email="+req.Email+" reason="+msg, ip)
		rerr := rejectedError(msg, ErrRegistration)
		rerr.Field = "email"
		return AuthResult{}, rerr
	}

	user := as.setUser(resp.User)
	as.audit.LogSecurityEvent(EventRegisterSuccess, "email="+req.Email, ip)
	return AuthResult{
		Notification: success("Account created successfully!"),
		Redirect:     models.PageHome,
		User:         user,
	}, nil
}

// Logout tells the backend and forgets the user. It succeeds locally
// whatever the backend answers.
func (as *AuthService) Logout(ctx context.Context, ip string) AuthResult {
	if err := as.backend.Logout(ctx); err != nil {
		log.Printf("AuthService.Logout - Backend logout failed: %v", err)
	}

	as.mu.Lock()
	email := ""
	if as.user != nil {
		email = as.user.Email
	}
	as.user = nil
	as.mu.Unlock()

	if err := as.store.RemoveItem(CurrentUserKey); err != nil {
		log.Printf("AuthService.Logout - Could not clear saved user: %v", err)
	}
	as.audit.LogSecurityEvent(EventLogout, "email="+email, ip)
	return AuthResult{
		Notification: success("You have been logged out successfully"),
		Redirect:     models.PageHome,
	}
}

func (as *AuthService) setUser(u *models.User) *models.User {
	user := *u
	as.mu.Lock()
	as.user = &user
	as.mu.Unlock()

	if err := as.store.SetItem(CurrentUserKey, user); err != nil {
		log.Printf("AuthService - Could not save user: %v", err)
	}
	out := user
	return &out
}
