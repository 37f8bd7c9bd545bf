package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newAuth(f *fixture) service.AuthService {
	return service.NewAuthService(f.kv, service.AuthConfig{
		Secret:   testSecret,
		TokenTTL: 2 * time.Hour,
		Now:      time.Now,
		Cost:     bcrypt.MinCost,
	})
}

func TestAuth_UnlockWithoutPIN(t *testing.T) {
	f := newFixture(t)
	auth := newAuth(f)

	has, err := auth.HasPIN(context.Background())
	require.NoError(t, err)
	assert.False(t, has)

	_, err = auth.Unlock(context.Background(), dto.UnlockRequest{PIN: "1234"})
	assert.ErrorIs(t, err, apierror.ErrInvalidState)
}

func TestAuth_SetAndUnlock(t *testing.T) {
	f := newFixture(t)
	auth := newAuth(f)
	ctx := context.Background()

	require.NoError(t, auth.SetPIN(ctx, dto.SetPinRequest{NewPIN: "4321"}))
	has, err := auth.HasPIN(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	_, err = auth.Unlock(ctx, dto.UnlockRequest{PIN: "0000"})
	assert.ErrorIs(t, err, apierror.ErrUnauthorized)

	resp, err := auth.Unlock(ctx, dto.UnlockRequest{PIN: "4321"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 7200, resp.ExpiresIn)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	assert.Equal(t, service.SessionSubject, claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestAuth_ChangePIN(t *testing.T) {
	f := newFixture(t)
	auth := newAuth(f)
	ctx := context.Background()
	require.NoError(t, auth.SetPIN(ctx, dto.SetPinRequest{NewPIN: "1111"}))

	err := auth.SetPIN(ctx, dto.SetPinRequest{NewPIN: "2222"})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	err = auth.SetPIN(ctx, dto.SetPinRequest{CurrentPIN: "9999", NewPIN: "2222"})
	assert.ErrorIs(t, err, apierror.ErrUnauthorized)

	require.NoError(t, auth.SetPIN(ctx, dto.SetPinRequest{CurrentPIN: "1111", NewPIN: "2222"}))
	_, err = auth.Unlock(ctx, dto.UnlockRequest{PIN: "1111"})
	assert.ErrorIs(t, err, apierror.ErrUnauthorized)
	_, err = auth.Unlock(ctx, dto.UnlockRequest{PIN: "2222"})
	assert.NoError(t, err)
}

func TestAuth_PINFormat(t *testing.T) {
	f := newFixture(t)
	auth := newAuth(f)

	for _, pin := range []string{"", "12", "1234567", "12ab"} {
		err := auth.SetPIN(context.Background(), dto.SetPinRequest{NewPIN: pin})
		assert.ErrorIs(t, err, apierror.ErrValidation, pin)
	}
}
