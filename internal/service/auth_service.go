package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/settings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// SessionSubject is the JWT subject of every unlock token. There is one shop
// and one device, so there are no user accounts.
const SessionSubject = "shop"

// AuthService guards the local API with the shop PIN.
type AuthService interface {
	HasPIN(ctx context.Context) (bool, error)
	// SetPIN sets the first PIN, or changes it when CurrentPIN matches.
	SetPIN(ctx context.Context, req dto.SetPinRequest) error
	Unlock(ctx context.Context, req dto.UnlockRequest) (*dto.UnlockResponse, error)
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
	Now      func() time.Time
	// Cost is the bcrypt cost; tests lower it.
	Cost int
}

type authService struct {
	kv  settings.Store
	cfg AuthConfig
}

func NewAuthService(kv settings.Store, cfg AuthConfig) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Cost == 0 {
		cfg.Cost = 12
	}
	return &authService{kv: kv, cfg: cfg}
}

func (s *authService) HasPIN(ctx context.Context) (bool, error) {
	_, ok, err := s.kv.Get(ctx, settings.KeyPinHash)
	return ok, err
}

func (s *authService) SetPIN(ctx context.Context, req dto.SetPinRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	hash, ok, err := s.kv.Get(ctx, settings.KeyPinHash)
	if err != nil {
		return err
	}
	if ok {
		if req.CurrentPIN == "" {
			return dto.Invalid("current_pin", "required")
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.CurrentPIN)) != nil {
			return apierror.ErrUnauthorized
		}
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPIN), s.cfg.Cost)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, settings.KeyPinHash, string(newHash)); err != nil {
		return err
	}
	log.Info().Bool("changed", ok).Msg("pin set")
	return nil
}

func (s *authService) Unlock(ctx context.Context, req dto.UnlockRequest) (*dto.UnlockResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	hash, ok, err := s.kv.Get(ctx, settings.KeyPinHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no PIN has been set", apierror.ErrInvalidState)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)); err != nil {
		log.Warn().Msg("unlock rejected")
		return nil, apierror.ErrUnauthorized
	}

	token, err := s.generateToken()
	if err != nil {
		return nil, err
	}
	return &dto.UnlockResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.cfg.TokenTTL / time.Second),
	}, nil
}

func (s *authService) generateToken() (string, error) {
	if s.cfg.Secret == "" {
		return "", errors.New("auth: empty signing secret")
	}
	now := s.cfg.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   SessionSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}
