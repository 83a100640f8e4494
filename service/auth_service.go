package service

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"restaurant-pos/models"
	"restaurant-pos/repository"
)

const minPasswordLength = 6

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrWeakPassword     = errors.New("password must be at least 6 characters")
	ErrEmailInUse       = models.ErrEmailInUse
	ErrNoSuchUser       = models.ErrUserNotFound
	ErrWrongPassword    = errors.New("wrong password")
	ErrUnauthenticated  = errors.New("missing or expired token")
	ErrForbidden        = errors.New("admin role required")
	ErrInvalidRole      = errors.New("role must be admin or staff")
	ErrLoginUnavailable = errors.New("an error occurred during login")
)

type tokenEntry struct {
	userID    string
	role      models.Role
	expiresAt time.Time
}

// AuthService handles signup, login and bearer tokens
type AuthService struct {
	users repository.UserRepositoryInterface
	ttl   time.Duration
	now   func() time.Time

	mu     sync.Mutex
	tokens map[string]tokenEntry
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepositoryInterface, ttl time.Duration) *AuthService {
	return &AuthService{
		users:  users,
		ttl:    ttl,
		now:    time.Now,
		tokens: make(map[string]tokenEntry),
	}
}

// Signup creates a staff account
func (s *AuthService) Signup(ctx context.Context, email, password string) (*models.User, error) {
	return s.CreateUser(ctx, email, password, models.RoleStaff)
}

// CreateUser creates an account with an explicit role
func (s *AuthService) CreateUser(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	email = strings.TrimSpace(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if role != models.RoleAdmin && role != models.RoleStaff {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user, err := s.users.Create(ctx, email, string(hash), role)
	if err != nil {
		log.Printf("❌ Signup: %s: %v", email, err)
		return nil, err
	}
	log.Printf("✅ Signup: user=%s role=%s", user.ID, user.Role)
	return user, nil
}

// Login checks credentials and issues a bearer token.
// Failures are ErrNoSuchUser, ErrWrongPassword or ErrLoginUnavailable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, ErrNoSuchUser
		}
		log.Printf("❌ Login: lookup failed: %v", err)
		return nil, ErrLoginUnavailable
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrWrongPassword
		}
		log.Printf("❌ Login: hash compare failed: %v", err)
		return nil, ErrLoginUnavailable
	}

	token := uuid.NewString()
	expiresAt := s.now().Add(s.ttl)

	s.mu.Lock()
	s.tokens[token] = tokenEntry{userID: user.ID, role: user.Role, expiresAt: expiresAt}
	s.mu.Unlock()

	log.Printf("🔑 Login: user=%s role=%s", user.ID, user.Role)
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout forgets a token
func (s *AuthService) Logout(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// Authorize resolves a token to its role, requiring admin when adminOnly is set
func (s *AuthService) Authorize(token string, adminOnly bool) (models.Role, error) {
	s.mu.Lock()
	entry, ok := s.tokens[token]
	if ok && !s.now().Before(entry.expiresAt) {
		delete(s.tokens, token)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return "", ErrUnauthenticated
	}
	if adminOnly && entry.role != models.RoleAdmin {
		return entry.role, ErrForbidden
	}
	return entry.role, nil
}
