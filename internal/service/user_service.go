package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"photo-inventory/internal/apperr"
	"photo-inventory/internal/domain"
	"photo-inventory/internal/repository"
	"photo-inventory/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// MinPasswordLength is the shortest accepted password
	MinPasswordLength = 8
)

var (
	ErrInvalidCredentials = apperr.Auth("invalid email or password")
	ErrMissingToken       = apperr.Auth("missing token")
	ErrInvalidToken       = apperr.Auth("invalid token")
	ErrTokenExpired       = apperr.Auth("token expired")
	ErrEmailTaken         = apperr.Conflict("user with this email already exists")
	ErrUserNotFound       = apperr.NotFound("user not found")
)

// UserService registers users, authenticates them and resolves bearer tokens
type UserService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*AccessToken, *domain.User, error)
	ResolveIdentity(tokenString string) (int64, error)
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)
}

// AccessToken is a signed bearer token and its expiry
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// UserServiceOption customizes a UserService
type UserServiceOption func(*userService)

// WithClock replaces time.Now for token issuance and verification
func WithClock(now func() time.Time) UserServiceOption {
	return func(s *userService) {
		s.now = now
	}
}

type userService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewUserService creates a new instance of UserService. accessTTL is the
// lifetime of every issued token.
func NewUserService(userRepo repository.UserRepository, jwtSecret string, accessTTL time.Duration, opts ...UserServiceOption) UserService {
	s := &userService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type registerInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates a new user account with a hashed password
func (s *userService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	input := registerInput{Email: normalizeEmail(email), Password: password}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	// Check if user already exists
	existingUser, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.Internal("failed to register user", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.Validation("password must be at most 72 bytes long",
				apperr.FieldError{Field: "password", Message: "must be at most 72 bytes long"})
		}
		return nil, apperr.Internal("failed to register user", err)
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, apperr.Internal("failed to register user", err)
	}

	return user, nil
}

// Login authenticates a user and returns a signed access token. Unknown
// emails and wrong passwords yield the same error.
func (s *userService) Login(ctx context.Context, email, password string) (*AccessToken, *domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same bcrypt time as a real comparison
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, apperr.Internal("failed to login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, nil, apperr.Internal("failed to login", err)
	}

	return token, user, nil
}

// ResolveIdentity verifies signature and expiry and returns the user id the
// token was issued for
func (s *userService) ResolveIdentity(tokenString string) (int64, error) {
	if strings.TrimSpace(tokenString) == "" {
		return 0, ErrMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired.Wrap(err)
		}
		return 0, ErrInvalidToken.Wrap(err)
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}

	return userID, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal("failed to get user", err)
	}
	return user, nil
}

// generateAccessToken signs an HS256 token with the user id as subject
func (s *userService) generateAccessToken(user *domain.User) (*AccessToken, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.accessTTL)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AccessToken{Token: tokenString, ExpiresAt: expiresAt, TTL: s.accessTTL}, nil
}

// hashPassword hashes a password using bcrypt with BcryptCost
func hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	dummyHashOnce sync.Once
	dummyHashVal  []byte
)

func dummyHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHashVal, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), BcryptCost)
	})
	return dummyHashVal
}
