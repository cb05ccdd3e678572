package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
	"github.com/taskmanager/taskmanager-go/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already taken")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStore is the persistence the auth service depends on.
// *repository.UserRepository implements it.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

var _ UserStore = (*repository.UserRepository)(nil)

// AuthService handles authentication business logic.
type AuthService struct {
	repo      UserStore
	hasher    *crypto.PasswordHasher
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo UserStore, hasher *crypto.PasswordHasher, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Register creates a new user account and returns an auth token.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)

	if err := validation.Check(map[string]string{
		"username": req.Username,
		"email":    req.Email,
		"password": req.Password,
	}, validation.UserSchema); err != nil {
		return model.AuthResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	user := &model.User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Email:     req.Email,
		AuthHash:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	return s.issue(user)
}

// Login authenticates a user and returns an auth token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	if err := validation.Check(map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}, validation.LoginSchema); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := s.hasher.Verify(req.Password, user.AuthHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// Profile returns the public profile of userID. The email is only included when
// the viewer is that user; viewerID is empty for anonymous requests.
func (s *AuthService) Profile(ctx context.Context, userID, viewerID string) (model.UserResponse, error) {
	resp, err := s.GetUser(ctx, userID)
	if err != nil {
		return model.UserResponse{}, err
	}
	if viewerID != userID {
		resp.Email = ""
	}
	return resp, nil
}

func (s *AuthService) issue(user *model.User) (model.AuthResponse, error) {
	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

func toUserResponse(user *model.User) model.UserResponse {
	return model.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
