package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/retailtally/backend/internal/auth"
	"github.com/retailtally/backend/internal/model"
	"github.com/retailtally/backend/internal/store"
)

// UserService handles account registration, login, and profile lookup.
type UserService struct {
	store  store.Store
	tokens *auth.TokenService
}

func NewUserService(st store.Store, tokens *auth.TokenService) *UserService {
	return &UserService{store: st, tokens: tokens}
}

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	StoreLocation string `json:"storeLocation"`
}

// AuthResult is returned by register and login: a signed token plus the
// user profile.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates a new employee account and signs them in.
// New accounts are always employees; admins are promoted out of band.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: an account with that email already exists", ErrConflict)
	}

	user := &model.User{
		ID:            uuid.New().String(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Role:          model.RoleEmployee,
		StoreLocation: strings.TrimSpace(in.StoreLocation),
		CreatedAt:     time.Now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. The same error covers an
// unknown email and a wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrForbidden)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Me returns the authenticated user's profile.
func (s *UserService) Me(ctx context.Context) (*model.User, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, claims.UID)
}
