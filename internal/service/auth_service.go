package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/repository/ports"
	"github.com/ArtemDidyk-Dev/travel-api/internal/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAuthValidation     = errors.New("auth validation failed")
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthToken is an issued bearer token with its expiry.
type AuthToken struct {
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users ports.UserRepository
	roles ports.RoleRepository
	jwt   *util.JWTManager
}

func NewAuthService(users ports.UserRepository, roles ports.RoleRepository, jwt *util.JWTManager) *AuthService {
	return &AuthService{users: users, roles: roles, jwt: jwt}
}

// Register creates a user with the USER role and signs them in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *AuthToken, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if name == "" {
		return nil, nil, fmt.Errorf("%w: name is required", ErrAuthValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid email address", ErrAuthValidation)
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrAuthValidation, err)
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}

	role, err := s.roles.GetOrCreate(ctx, domain.RoleUser)
	if err != nil {
		return nil, nil, err
	}
	if err := s.roles.AssignToUser(ctx, user.ID, []uuid.UUID{role.ID}); err != nil {
		return nil, nil, err
	}
	user.Roles = []domain.Role{*role}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *AuthToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !util.VerifyPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	roles, err := s.roles.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	user.Roles = roles

	token, err := s.issueToken(user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Authenticate resolves a bearer token into the current user with roles.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	roles, err := s.roles.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

func (s *AuthService) issueToken(user *domain.User) (*AuthToken, error) {
	roleNames := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roleNames = append(roleNames, string(role.Name))
	}
	signed, expiresAt, err := s.jwt.Generate(user.ID, user.Email, roleNames)
	if err != nil {
		return nil, err
	}
	return &AuthToken{Token: signed, ExpiresAt: expiresAt}, nil
}
