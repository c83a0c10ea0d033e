package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westeroschronicles/chronicle/internal/store"
	"github.com/westeroschronicles/chronicle/internal/store/sqlite"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	dsnName := strings.NewReplacer("/", "_").Replace(t.Name())
	st, err := sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", dsnName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st, "test-secret", ttl)
}

func TestSignupAndLogin(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	profile, token, err := svc.Signup(ctx, "Jon", "winteriscoming", "Night's Watch")
	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, "Jon", profile.Username)
	assert.NotEmpty(t, token)

	verified, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, verified.UserID)
	assert.Equal(t, "Jon", verified.Username)

	_, loginToken, err := svc.Login(ctx, "Jon", "winteriscoming")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
}

func TestSignupValidation(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "J", "winteriscoming", "Stark")
	assert.Error(t, err)

	_, _, err = svc.Signup(ctx, "Jon", "short", "Stark")
	assert.Error(t, err)
}

func TestSignupDuplicateUsername(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "Arya", "needleneedle", "Stark")
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, "Arya", "otherpassword", "Stark")
	assert.ErrorIs(t, err, store.ErrDuplicateUsername)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "Sansa", "littlebird123", "Stark")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "Sansa", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "NoSuchUser", "littlebird123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateGarbage(t *testing.T) {
	svc := newTestService(t, time.Hour)

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateExpired(t *testing.T) {
	svc := newTestService(t, -time.Minute)
	ctx := context.Background()

	_, token, err := svc.Signup(ctx, "Bran", "threeeyedraven", "Stark")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
