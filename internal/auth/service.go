// Package auth is the mocked sign-in collaborator. Any credentials are
// accepted after a simulated delay; the signed-in user is held in memory.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"nestlink/server/internal/delay"
	"nestlink/server/internal/models"
)

var (
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrNameRequired        = errors.New("name is required")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrUnknownUserType     = errors.New("unknown user type")
	ErrNotSignedIn         = errors.New("not signed in")
)

type UserType string

const (
	UserRegular       UserType = "regular"
	UserPropertyOwner UserType = "propertyOwner"
)

// mockUserID is the id every mocked account gets
const mockUserID = "1"

type RegisterRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirm_password"`
	UserType        UserType `json:"user_type"`
	IDNumber        string   `json:"id_number"`
	Company         string   `json:"company"`
}

// Session is what a successful sign-in hands back to the caller.
type Session struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type Options struct {
	Delay time.Duration
	JWT   JWTConfig
}

type Service struct {
	mu     sync.RWMutex
	user   *models.User
	token  string
	tokens *JWTManager
	delay  time.Duration
	logger *logrus.Logger
}

func NewService(opts Options, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Service{
		tokens: NewJWTManager(opts.JWT),
		delay:  opts.Delay,
		logger: logger,
	}
}

// Login signs in as the demo user with the given email. The password is
// not checked.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, ErrCredentialsRequired
	}
	if err := delay.Wait(ctx, s.delay); err != nil {
		return Session{}, fmt.Errorf("login interrupted: %w", err)
	}

	user := models.User{
		ID:               mockUserID,
		Name:             "John Doe",
		Email:            email,
		ProfileCompleted: true,
	}
	return s.signIn(user)
}

// Register creates the account described by req and signs it in. Property
// owners start with an incomplete profile.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	if err := validateRegistration(&req); err != nil {
		return Session{}, err
	}
	if err := delay.Wait(ctx, s.delay); err != nil {
		return Session{}, fmt.Errorf("registration interrupted: %w", err)
	}

	owner := req.UserType == UserPropertyOwner
	user := models.User{
		ID:               mockUserID,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		IsHost:           owner,
		IsPropertyOwner:  owner,
		IDNumber:         req.IDNumber,
		Company:          req.Company,
		ProfileCompleted: !owner,
	}
	return s.signIn(user)
}

func validateRegistration(req *RegisterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if req.Name == "" {
		return ErrNameRequired
	}
	if req.Email == "" || req.Password == "" {
		return ErrCredentialsRequired
	}
	if req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	switch req.UserType {
	case "":
		req.UserType = UserRegular
	case UserRegular, UserPropertyOwner:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownUserType, req.UserType)
	}
	return nil
}

func (s *Service) signIn(user models.User) (Session, error) {
	token, expires, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id":        user.ID,
		"property_owner": user.IsPropertyOwner,
	}).Info("User signed in")
	return Session{User: user, Token: token, ExpiresAt: expires}, nil
}

// Logout drops the current session. Tokens issued for it stop working.
func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		s.logger.WithField("user_id", s.user.ID).Info("User signed out")
	}
	s.user = nil
	s.token = ""
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Service) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticate returns the user a token belongs to. Only the token of the
// current session is accepted.
func (s *Service) Authenticate(token string) (*models.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.token != token || claims.UserID != s.user.ID {
		return nil, ErrNotSignedIn
	}
	u := *s.user
	return &u, nil
}
