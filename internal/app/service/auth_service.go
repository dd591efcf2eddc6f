package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"hapyland/internal/common"
	"hapyland/internal/common/security"
	"hapyland/internal/domain/model"
	"hapyland/internal/domain/repository"
	"hapyland/internal/platform/database"

	"github.com/google/uuid"
)

// PasswordVerifier decides whether password unlocks user.
type PasswordVerifier func(user *model.User, password string) bool

// AcceptAnyPassword is a placeholder: passwords are stored as given and not checked at
// login. Swap it for a real verifier together with a hashing scheme on registration.
func AcceptAnyPassword(*model.User, string) bool { return true }

type AuthService struct {
	userRepo repository.UserRepository
	db       *sql.DB
	verify   PasswordVerifier
}

func NewAuthService(userRepo repository.UserRepository, db *sql.DB, verify PasswordVerifier) *AuthService {
	if verify == nil {
		verify = AcceptAnyPassword
	}
	return &AuthService{userRepo: userRepo, db: db, verify: verify}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is Found=false when no such user exists; that is an answer, not an error.
type LoginResult struct {
	Found bool
	User  *model.User
	Token string
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, common.Errorf("username is required: %w", common.ErrBadRequest)
	}

	user := &model.User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		CreatedAt: time.Now(),
	}

	err := database.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		count, err := s.userRepo.CountByUsername(ctx, tx, req.Username)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("username %q is taken: %w", req.Username, common.ErrConflict)
		}
		// a concurrent insert that slips past the count surfaces as ErrConflict too
		return s.userRepo.Create(ctx, tx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var users []model.User
	err := database.WithTx(ctx, s.db, database.ReadOnly, func(tx *sql.Tx) error {
		var err error
		users, err = s.userRepo.FindByUsername(ctx, tx, req.Username, 2)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	switch len(users) {
	case 0:
		return &LoginResult{Found: false}, nil
	case 1:
	default:
		return nil, fmt.Errorf("%d users share username %q: %w", len(users), req.Username, common.ErrInconsistentState)
	}

	user := &users[0]
	if !s.verify(user, req.Password) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateSessionToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	return &LoginResult{Found: true, User: user, Token: token}, nil
}

// Session resolves a login marker back to its username.
func (s *AuthService) Session(token string) (string, error) {
	if token == "" {
		return "", common.ErrUnauthorized
	}
	username, err := security.UsernameFromToken(token)
	if err != nil {
		return "", fmt.Errorf("invalid session: %w", common.ErrUnauthorized)
	}
	return username, nil
}
