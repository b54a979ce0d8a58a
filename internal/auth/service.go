package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/store"
)

// TokenType is returned alongside every access token.
const TokenType = "bearer"

// UserStore defines the interface for user persistence. CreateUser must
// enforce username uniqueness atomically and report a clash as
// store.ErrUserExists; GetUserByUsername reports store.ErrUserNotFound.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	AccessToken string
	TokenType   string
	Role        models.Role
}

// Service orchestrates registration and login.
type Service struct {
	users  UserStore
	hasher *PasswordHasher
	tokens *TokenService
}

func NewService(users UserStore, hasher *PasswordHasher, tokens *TokenService) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

// Register hashes the password and stores a new user. An empty role means
// models.RoleUser. The role is stored as given; restricting it to the known
// set is the caller's decision (see models.RegisterRequest.Validate).
func (s *Service) Register(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.CreateUser(ctx, username, hash, role)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return u, nil
}

// Login checks the credentials and issues a token for the user. An unknown
// username and a wrong password both yield ErrInvalidCredentials after the
// same amount of bcrypt work.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.hasher.burn(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.Username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &LoginResult{AccessToken: token, TokenType: TokenType, Role: u.Role}, nil
}

// EnsureAdmin creates an admin account unless the username is already taken.
// It is safe to call on every start. created is false when the account
// existed; in that case its role is left untouched and the returned user
// carries whatever role it already had.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (u *models.User, created bool, err error) {
	u, err = s.Register(ctx, username, password, models.RoleAdmin)
	switch {
	case err == nil:
		return u, true, nil
	case errors.Is(err, ErrUserAlreadyExists):
		existing, err := s.users.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, false, fmt.Errorf("ensure admin: %w", err)
		}
		return existing, false, nil
	default:
		return nil, false, err
	}
}
