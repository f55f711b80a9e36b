package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kev405/toolflow-backend/internal/auth"
	"github.com/kev405/toolflow-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// AuthService orchestrates login, token validation and current-user lookup.
type AuthService struct {
	repo   UserRepository
	tokens *auth.TokenService
	log    *slog.Logger
}

func NewAuthService(repo UserRepository, tokens *auth.TokenService, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{repo: repo, tokens: tokens, log: log}
}

// Login verifies the credentials and issues a token carrying the user's
// display name and authorities. Unknown usernames and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrBadCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrBadCredentials
	}

	roles, err := s.repo.RolesByUserID(ctx, user.ID)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user, roles)
	if err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "user logged in", "username", user.Username)
	return token, nil
}

// ValidateToken is a pure boolean probe; it never fails.
func (s *AuthService) ValidateToken(token string) bool {
	return s.tokens.IsValid(token)
}

// ResolveIdentity loads the active account behind a verified token subject
// and its current role set. The filter calls this once per request.
func (s *AuthService) ResolveIdentity(ctx context.Context, username string) (auth.Identity, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return auth.Identity{}, err
	}
	roles, err := s.repo.RolesByUserID(ctx, user.ID)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Roles:    roles,
	}, nil
}

// CurrentUser re-resolves the identity bound to the request and returns its
// public view; the stored hash never leaves this layer.
func (s *AuthService) CurrentUser(ctx context.Context, identity auth.Identity) (UserResponse, error) {
	user, err := s.repo.GetByUsername(ctx, identity.Username)
	if err != nil {
		return UserResponse{}, err
	}
	user.PasswordHash = ""

	roles, err := s.repo.RolesByUserID(ctx, user.ID)
	if err != nil {
		return UserResponse{}, err
	}
	return buildUserResponse(user, roles), nil
}
