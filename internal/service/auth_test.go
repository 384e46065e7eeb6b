package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/postpad/postpad-go/internal/model"
	"github.com/postpad/postpad-go/internal/repository"
)

// memUsers is an in-memory UserStore enforcing the same uniqueness
// rules as the database schema.
type memUsers struct {
	users  map[int64]*model.User
	nextID int64
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[int64]*model.User), nextID: 1}
}

func (m *memUsers) conflict(username, email string, excludeID int64) error {
	for _, u := range m.users {
		if u.ID == excludeID {
			continue
		}
		if u.Username == username {
			return repository.ErrDuplicateUsername
		}
		if u.Email == email {
			return repository.ErrDuplicateEmail
		}
	}
	return nil
}

func (m *memUsers) Create(_ context.Context, user *model.User) error {
	if err := m.conflict(user.Username, user.Email, 0); err != nil {
		return err
	}
	user.ID = m.nextID
	m.nextID++
	cp := *user
	m.users[cp.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	if err := m.conflict(user.Username, user.Email, user.ID); err != nil {
		return err
	}
	m.users[user.ID].Username = user.Username
	m.users[user.ID].Email = user.Email
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func newTestAuthService() (*AuthService, *memUsers) {
	users := newMemUsers()
	tokens := NewTokenService(newMemRevocations(), "test-secret", time.Hour)
	return NewAuthService(users, tokens), users
}

func register(t *testing.T, svc *AuthService, username, email, password string) model.UserResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: username, Email: email, Password: password,
	})
	if err != nil {
		t.Fatalf("Register(%s) unexpected error: %v", username, err)
	}
	return resp
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _ := newTestAuthService()

	cases := []struct {
		req  model.RegisterRequest
		want error
	}{
		{model.RegisterRequest{Email: "a@b.c", Password: "pw"}, ErrUsernameRequired},
		{model.RegisterRequest{Username: "alice", Password: "pw"}, ErrEmailRequired},
		{model.RegisterRequest{Username: "alice", Email: "a@b.c"}, ErrPasswordRequired},
	}
	for _, tc := range cases {
		if _, err := svc.Register(context.Background(), tc.req); !errors.Is(err, tc.want) {
			t.Errorf("Register(%+v) error = %v, want %v", tc.req, err, tc.want)
		}
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	resp := register(t, svc, "Alice", "Alice@Example.COM", "password123")
	if resp.Email != "alice@example.com" {
		t.Errorf("stored email = %q, want lower-cased", resp.Email)
	}
	if resp.Username != "Alice" {
		t.Errorf("stored username = %q, want case preserved", resp.Username)
	}

	// Same email with different casing must conflict.
	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice2", Email: "ALICE@example.com", Password: "password123",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register() with re-cased email error = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _ := newTestAuthService()
	register(t, svc, "alice", "alice@example.com", "password123")

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "pw",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username error = %v, want ErrUsernameTaken", err)
	}

	_, err = svc.Register(context.Background(), model.RegisterRequest{
		Username: "bob", Email: "alice@example.com", Password: "pw",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email error = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterNeverStoresPlaintext(t *testing.T) {
	svc, users := newTestAuthService()
	resp := register(t, svc, "alice", "alice@example.com", "password123")

	stored := users.users[resp.ID]
	if stored.PasswordHash == "password123" || stored.PasswordHash == "" {
		t.Errorf("password hash %q looks unhashed", stored.PasswordHash)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService()
	register(t, svc, "alice", "alice@example.com", "password123")

	resp, err := svc.Login(context.Background(), model.LoginRequest{
		Email: "alice@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("Login() returned an empty access token")
	}
}

func TestLoginUniformError(t *testing.T) {
	svc, _ := newTestAuthService()
	register(t, svc, "alice", "alice@example.com", "password123")

	// Unknown email and wrong password must be indistinguishable.
	_, errUnknown := svc.Login(context.Background(), model.LoginRequest{
		Email: "nobody@example.com", Password: "password123",
	})
	_, errWrongPw := svc.Login(context.Background(), model.LoginRequest{
		Email: "alice@example.com", Password: "wrong",
	})

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", errUnknown)
	}
	if !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", errWrongPw)
	}
}

func TestLoginEmailCaseInsensitive(t *testing.T) {
	svc, _ := newTestAuthService()
	register(t, svc, "alice", "alice@example.com", "password123")

	if _, err := svc.Login(context.Background(), model.LoginRequest{
		Email: "Alice@Example.Com", Password: "password123",
	}); err != nil {
		t.Errorf("Login() with re-cased email unexpected error: %v", err)
	}
}

func TestUpdateProfileConflict(t *testing.T) {
	svc, _ := newTestAuthService()
	a := register(t, svc, "alice", "alice@example.com", "pw1")
	register(t, svc, "bob", "bob@example.com", "pw2")

	_, err := svc.UpdateProfile(context.Background(), a.ID, model.UpdateProfileRequest{Username: "bob"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("UpdateProfile() error = %v, want ErrUsernameTaken", err)
	}

	_, err = svc.UpdateProfile(context.Background(), a.ID, model.UpdateProfileRequest{Email: "bob@example.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("UpdateProfile() error = %v, want ErrEmailTaken", err)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, _ := newTestAuthService()
	a := register(t, svc, "alice", "alice@example.com", "pw1")

	resp, err := svc.UpdateProfile(context.Background(), a.ID, model.UpdateProfileRequest{Username: "alicia"})
	if err != nil {
		t.Fatalf("UpdateProfile() unexpected error: %v", err)
	}
	if resp.Username != "alicia" {
		t.Errorf("username = %q, want %q", resp.Username, "alicia")
	}
	if resp.Email != "alice@example.com" {
		t.Errorf("email = %q, want unchanged", resp.Email)
	}
}

func TestUpdatePassword(t *testing.T) {
	svc, _ := newTestAuthService()
	a := register(t, svc, "alice", "alice@example.com", "old-password")

	err := svc.UpdatePassword(context.Background(), a.ID, model.UpdatePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "new-password",
	})
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("UpdatePassword() with wrong current error = %v, want ErrWrongPassword", err)
	}

	err = svc.UpdatePassword(context.Background(), a.ID, model.UpdatePasswordRequest{
		CurrentPassword: "old-password", NewPassword: "new-password",
	})
	if err != nil {
		t.Fatalf("UpdatePassword() unexpected error: %v", err)
	}

	if _, err := svc.Login(context.Background(), model.LoginRequest{
		Email: "alice@example.com", Password: "new-password",
	}); err != nil {
		t.Errorf("Login() with new password unexpected error: %v", err)
	}
	if _, err := svc.Login(context.Background(), model.LoginRequest{
		Email: "alice@example.com", Password: "old-password",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() with old password error = %v, want ErrInvalidCredentials", err)
	}
}

func TestUpdatePasswordMissingFields(t *testing.T) {
	svc, _ := newTestAuthService()
	a := register(t, svc, "alice", "alice@example.com", "pw")

	err := svc.UpdatePassword(context.Background(), a.ID, model.UpdatePasswordRequest{NewPassword: "x"})
	if !errors.Is(err, ErrCurrentPasswordRequired) {
		t.Errorf("error = %v, want ErrCurrentPasswordRequired", err)
	}
	err = svc.UpdatePassword(context.Background(), a.ID, model.UpdatePasswordRequest{CurrentPassword: "pw"})
	if !errors.Is(err, ErrNewPasswordRequired) {
		t.Errorf("error = %v, want ErrNewPasswordRequired", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	svc, _ := newTestAuthService()
	a := register(t, svc, "alice", "alice@example.com", "pw")

	if err := svc.DeleteAccount(context.Background(), a.ID); err != nil {
		t.Fatalf("DeleteAccount() unexpected error: %v", err)
	}

	_, err := svc.CurrentUser(context.Background(), a.ID)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("CurrentUser() after delete error = %v, want ErrUserNotFound", err)
	}
}
