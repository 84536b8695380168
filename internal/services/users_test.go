package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/internal/auth"
	"filevault/internal/common"
	"filevault/internal/logging"
	"filevault/internal/models"
	"filevault/internal/repositories/inmemory"
	"filevault/internal/repositories/users"
)

const strongPassword = "correct horse battery staple"

func newUserService(t *testing.T) *UserService {
	t.Helper()
	store := inmemory.NewStore()
	return NewUserService(store.Users(), []byte("test-secret"), time.Hour, logging.NewDiscardLogger())
}

func TestRegister_RejectsWeakPasswords(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	for _, password := range []string{"password", "12345678", "alice123"} {
		_, err := svc.Register(ctx, "alice@example.com", password)
		assert.ErrorIs(t, err, common.ErrWeakPassword, "password %q", password)
	}

	_, err := svc.Register(ctx, "", strongPassword)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestRegister_NormalizesEmailAndRejectsDuplicates(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Alice@Example.COM ", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = svc.Register(ctx, "alice@example.com", strongPassword)
	assert.ErrorIs(t, err, common.ErrEmailAlreadyExists)
}

func TestLogin_RoundTrip(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", strongPassword)
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice@example.com", strongPassword)
	require.NoError(t, err)

	identity, err := auth.ParseToken(token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "alice@example.com", identity.Email)
}

func TestLogin_WrongCredentialsAreIndistinguishable(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", strongPassword)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "not the password")
	assert.ErrorIs(t, err, common.ErrInvalidEmailPassword)

	_, err = svc.Login(ctx, "nobody@example.com", strongPassword)
	assert.ErrorIs(t, err, common.ErrInvalidEmailPassword)
}

func TestLogin_AttemptLimiter(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", strongPassword)
	require.NoError(t, err)

	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	for i := 0; i < maxLoginAttempts; i++ {
		_, err := svc.Login(ctx, "alice@example.com", "wrong")
		require.ErrorIs(t, err, common.ErrInvalidEmailPassword)
	}

	// the limiter trips even with the right password
	_, err = svc.Login(ctx, "alice@example.com", strongPassword)
	assert.ErrorIs(t, err, common.ErrTooManyAttempts)

	// other accounts are unaffected
	_, err = svc.Login(ctx, "bob@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidEmailPassword)

	// the window slides: once the failures age out, login succeeds again
	clock = clock.Add(attemptWindow + time.Minute)
	_, err = svc.Login(ctx, "alice@example.com", strongPassword)
	assert.NoError(t, err)
}

// downUserRepo simulates an unreachable metadata store.
type downUserRepo struct {
	users.Repository
}

func (r *downUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, fmt.Errorf("%w: connection refused", common.ErrCollaborator)
}

// A store outage during login surfaces as the collaborator error it is, not
// as a credential failure, and burns no lockout strike.
func TestLogin_StoreOutagePropagates(t *testing.T) {
	store := inmemory.NewStore()
	svc := NewUserService(&downUserRepo{Repository: store.Users()}, []byte("test-secret"), time.Hour, logging.NewDiscardLogger())

	_, err := svc.Login(context.Background(), "alice@example.com", strongPassword)
	assert.ErrorIs(t, err, common.ErrCollaborator)
	assert.NotErrorIs(t, err, common.ErrInvalidEmailPassword)
	assert.Empty(t, svc.attempts)
}

func TestLogin_SuccessClearsFailures(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", strongPassword)
	require.NoError(t, err)

	for i := 0; i < maxLoginAttempts-1; i++ {
		_, err := svc.Login(ctx, "alice@example.com", "wrong")
		require.ErrorIs(t, err, common.ErrInvalidEmailPassword)
	}

	_, err = svc.Login(ctx, "alice@example.com", strongPassword)
	require.NoError(t, err)

	// the slate is clean: another full run of failures is needed to trip it
	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidEmailPassword)
}
