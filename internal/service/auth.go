package service

import (
	"context"
	"errors"
	"strings"

	"github.com/postpad/postpad-go/internal/crypto"
	"github.com/postpad/postpad-go/internal/model"
	"github.com/postpad/postpad-go/internal/repository"
)

var (
	ErrUsernameRequired        = errors.New("username is required")
	ErrEmailRequired           = errors.New("email is required")
	ErrPasswordRequired        = errors.New("password is required")
	ErrCurrentPasswordRequired = errors.New("current_password is required")
	ErrNewPasswordRequired     = errors.New("new_password is required")
	ErrUsernameTaken           = errors.New("username already taken")
	ErrEmailTaken              = errors.New("email already taken")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrWrongPassword           = errors.New("current password is incorrect")
	ErrUserNotFound            = errors.New("user not found")
)

// UserStore persists user records.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

// AuthService handles registration, login and account management.
type AuthService struct {
	users  UserStore
	tokens *TokenService
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a new user account. Emails are stored lower-cased;
// usernames keep their case.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	if req.Username == "" {
		return model.UserResponse{}, ErrUsernameRequired
	}
	if req.Email == "" {
		return model.UserResponse{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.UserResponse{}, ErrPasswordRequired
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.UserResponse{}, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.UserResponse{}, mapUserErr(err)
	}

	return toUserResponse(user), nil
}

// Login authenticates a user by email and password and issues an access
// token. An unknown email and a wrong password return the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.TokenResponse{}, ErrInvalidCredentials
		}
		return model.TokenResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.TokenResponse{}, err
	}
	if !match {
		return model.TokenResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{AccessToken: token}, nil
}

// Logout revokes the presented token's id.
func (s *AuthService) Logout(ctx context.Context, jti string) error {
	return s.tokens.Revoke(ctx, jti)
}

// CurrentUser returns the authenticated user's profile.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, mapUserErr(err)
	}
	return toUserResponse(user), nil
}

// UpdateProfile changes the user's username and/or email. Empty request
// fields keep their current values; uniqueness is re-checked by the
// store's constraints.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, mapUserErr(err)
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != "" {
		user.Email = strings.ToLower(req.Email)
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return model.UserResponse{}, mapUserErr(err)
	}

	return toUserResponse(user), nil
}

// UpdatePassword changes the user's password after verifying the
// current one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID int64, req model.UpdatePasswordRequest) error {
	if req.CurrentPassword == "" {
		return ErrCurrentPasswordRequired
	}
	if req.NewPassword == "" {
		return ErrNewPasswordRequired
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return mapUserErr(err)
	}

	match, err := crypto.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !match {
		return ErrWrongPassword
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return mapUserErr(s.users.UpdatePassword(ctx, userID, hash))
}

// DeleteAccount removes the user; owned posts go with it.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) error {
	return mapUserErr(s.users.Delete(ctx, userID))
}

func toUserResponse(u *model.User) model.UserResponse {
	return model.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func mapUserErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrUsernameTaken
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	default:
		return err
	}
}
