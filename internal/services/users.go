package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/argon2"

	"filevault/internal/auth"
	"filevault/internal/common"
	"filevault/internal/logging"
	"filevault/internal/models"
	"filevault/internal/repositories/users"
)

const (
	// minPasswordScore is the zxcvbn score a registration password must reach.
	minPasswordScore = 3

	// Login attempt limiting: at most maxLoginAttempts failures per email
	// within attemptWindow.
	maxLoginAttempts = 10
	attemptWindow    = 15 * time.Minute
)

// UserService handles registration, login and session issuance. Login
// failures are rate-limited per email with a sliding window held in memory.
type UserService struct {
	users           users.Repository
	secretKey       []byte
	sessionValidity time.Duration
	log             logging.Logger

	mu       sync.Mutex
	attempts map[string][]time.Time
	now      func() time.Time
}

func NewUserService(userRepo users.Repository, secretKey []byte, sessionValidity time.Duration, log logging.Logger) *UserService {
	return &UserService{
		users:           userRepo,
		secretKey:       secretKey,
		sessionValidity: sessionValidity,
		log:             log,
		attempts:        make(map[string][]time.Time),
		now:             time.Now,
	}
}

// Register creates an account. The password must clear the zxcvbn strength
// gate; the stored credential is an argon2id hash with a per-user salt.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	strength := zxcvbn.PasswordStrength(password, []string{email})
	if strength.Score < minPasswordScore {
		return nil, fmt.Errorf("%w: choose a stronger password", common.ErrWeakPassword)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("reading salt: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hashPassword([]byte(password), salt),
		PasswordSalt: salt,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and returns a signed session token carrying
// the identity pair. Wrong email and wrong password are indistinguishable to
// the caller; repeated failures for one email trip the attempt limiter.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	if s.limited(email) {
		return "", fmt.Errorf("%w: try again later", common.ErrTooManyAttempts)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// an unreachable metadata store is not a credential failure and must
		// not burn a lockout strike
		if !errors.Is(err, common.ErrNotFound) {
			return "", err
		}
		s.recordFailure(email)
		return "", common.ErrInvalidEmailPassword
	}

	hash := hashPassword([]byte(password), user.PasswordSalt)
	if subtle.ConstantTimeCompare(hash, user.PasswordHash) != 1 {
		s.recordFailure(email)
		return "", common.ErrInvalidEmailPassword
	}

	s.clearFailures(email)

	token, err := auth.GenerateToken(user.ID, user.Email, s.secretKey, s.sessionValidity)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return token, nil
}

// hashPassword derives the stored credential with argon2id.
func hashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

func (s *UserService) limited(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-attemptWindow)
	recent := s.attempts[email][:0]
	for _, t := range s.attempts[email] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	s.attempts[email] = recent
	return len(recent) >= maxLoginAttempts
}

func (s *UserService) recordFailure(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[email] = append(s.attempts[email], s.now())
}

func (s *UserService) clearFailures(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, email)
}
