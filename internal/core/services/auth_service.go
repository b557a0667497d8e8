package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/altrove/habitlens/internal/core/domain"
)

type AuthService struct {
	repo   domain.UserRepository
	tokens *TokenService
}

func NewAuthService(repo domain.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		repo:   repo,
		tokens: tokens,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	id := uuid.NewString()
	user, err := domain.NewUser(id, input.Username, input.Email)
	if err != nil {
		return nil, err
	}

	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth service: failed to create user: %w", err)
	}

	return user, nil
}

// Login checks the credentials and issues a signed token. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := user.CheckPassword(password); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
