package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	jwtpkg "github.com/xyz-asif/ebooks/internal/pkg/jwt"
	"github.com/xyz-asif/ebooks/internal/pkg/logger"
	"github.com/xyz-asif/ebooks/internal/pkg/validator"
	apperr "github.com/xyz-asif/ebooks/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost used for stored hashes
const bcryptCost = 10

var (
	ErrEmailTaken          = errors.New("Email already registered")
	ErrUsernameTaken       = errors.New("Username already taken")
	ErrInvalidCredentials  = errors.New("Invalid email or password")
	ErrThirdPartyAccount   = errors.New("Password reset is not available for accounts signed in with Google or GitHub")
	ErrWrongPassword       = errors.New("Current password is incorrect")
	ErrSamePassword        = errors.New("New password must be different from the current password")
	ErrWeakPassword        = errors.New("Password must be at least 8 characters")
	ErrProviderEmail       = errors.New("The identity provider did not return an email address")
	ErrEmailNotVerified    = errors.New("The identity provider email address is not verified")
	ErrUsernameUnavailable = errors.New("could not allocate a unique username")
)

type Service struct {
	store  UserStore
	jwtCfg *jwtpkg.Config
}

func NewService(store UserStore, jwtCfg *jwtpkg.Config) *Service {
	return &Service{store: store, jwtCfg: jwtCfg}
}

// IssueToken signs a JWT for the user
func (s *Service) IssueToken(user *User) (string, error) {
	return jwtpkg.GenerateToken(user.ID.Hex(), user.Username, user.Email, s.jwtCfg)
}

func (s *Service) authResponse(user *User) (*AuthResponse, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Token: token, User: user}, nil
}

// Register creates a local account. req must already be normalized and validated.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	existing, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	existing, err = s.store.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
	}
	// A concurrent registration can still hit the unique index here (ErrDuplicate).
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.authResponse(user)
}

// Login verifies local credentials
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// ResetPassword changes the password of a local account
func (s *Service) ResetPassword(ctx context.Context, user *User, current, next string) error {
	if user.IsThirdParty() {
		return ErrThirdPartyAccount
	}
	if !validator.IsValidPassword(next) {
		return ErrWeakPassword
	}
	if current == next {
		return ErrSamePassword
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	user.Password = string(hash)
	return nil
}

// SignInWithProvider finds, links or creates the user behind an OAuth profile
func (s *Service) SignInWithProvider(ctx context.Context, profile *ProviderProfile) (*AuthResponse, error) {
	user, err := s.store.FindByProviderID(ctx, profile.Provider, profile.ID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return s.authResponse(user)
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return nil, ErrProviderEmail
	}
	if !profile.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	user, err = s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if err := s.store.LinkProvider(ctx, user.ID, profile.Provider, profile.ID); err != nil {
			return nil, err
		}
		setProviderID(user, profile.Provider, profile.ID)
		logger.Info("linked %s account to user %s", profile.Provider, user.ID.Hex())
		return s.authResponse(user)
	}

	username, err := s.availableUsername(ctx, profile)
	if err != nil {
		return nil, err
	}

	user = &User{Username: username, Email: email}
	setProviderID(user, profile.Provider, profile.ID)
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.authResponse(user)
}

func (s *Service) availableUsername(ctx context.Context, profile *ProviderProfile) (string, error) {
	name := profile.Name
	if name == "" {
		name = profile.Login
	}
	if name == "" {
		name = strings.SplitN(profile.Email, "@", 2)[0]
	}
	base := GenerateUniqueUsername(name)

	candidate := base
	for i := 0; i < 10; i++ {
		existing, err := s.store.FindByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = withSuffix(base)
	}
	return "", ErrUsernameUnavailable
}

func setProviderID(user *User, provider Provider, id string) {
	switch provider {
	case ProviderGoogle:
		user.GoogleID = id
	case ProviderGitHub:
		user.GitHubID = id
	}
}

// isDuplicate reports a unique index violation surfaced by the store
func isDuplicate(err error) bool {
	return errors.Is(err, apperr.ErrDuplicate)
}
