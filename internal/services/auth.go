package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"github.com/anonto42/dreamscape/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the cost existing Dreamscape hashes were made with.
const DefaultBcryptCost = 12

// TokenIssuer signs and verifies identity tokens.
type TokenIssuer interface {
	Generate(userID string) (string, error)
	Parse(token string) (string, error)
}

type AuthService struct {
	users  repositories.UserRepository
	tokens TokenIssuer
	cost   int
}

func NewAuthService(users repositories.UserRepository, tokens TokenIssuer, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = DefaultBcryptCost
	}
	return &AuthService{users: users, tokens: tokens, cost: bcryptCost}
}

type SignUpResult struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type SignInResult struct {
	User  models.AuthUser `json:"user"`
	Token string          `json:"token"`
}

// SignUp creates an account and returns a token for it. Email and username
// must both be unused.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*SignUpResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Username: username,
		Name:     strings.TrimSpace(req.Name),
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent sign-up; the unique index decides.
		var dup *repositories.DuplicateError
		if errors.As(err, &dup) && dup.Field == "username" {
			return nil, ErrUsernameTaken
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &SignUpResult{Email: user.Email, Token: token}, nil
}

// SignIn checks credentials and returns the account projection with a token.
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (*SignInResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotExist
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &SignInResult{User: user.ToAuthUser(), Token: token}, nil
}

// Authenticate resolves a bearer token to the id of a user that still exists.
func (s *AuthService) Authenticate(ctx context.Context, token string) (primitive.ObjectID, error) {
	subject, err := s.tokens.Parse(token)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	id, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed subject", ErrUnauthenticated)
	}
	exists, err := s.users.Exists(ctx, id)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !exists {
		return primitive.NilObjectID, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
	}
	return id, nil
}
