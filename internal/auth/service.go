package auth

import (
	"context"
	"errors"
	"time"

	"github.com/nzuri-bank/nzuri/internal/account"
	"github.com/nzuri-bank/nzuri/internal/config"
)

// Service issues and refreshes access tokens for accounts.
type Service struct {
	cfg  config.Config
	repo account.Repository
}

// NewService builds the token service.
func NewService(cfg config.Config, repo account.Repository) *Service {
	return &Service{cfg: cfg, repo: repo}
}

// TokenPair bundles the issued access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login issues an access/refresh token pair for an authenticated account.
func (s *Service) Login(acct account.Account) (TokenPair, error) {
	access, accessExp, err := s.sign(acct, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.sign(acct, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(accessExp).Seconds()),
	}, nil
}

func (s *Service) sign(acct account.Account, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := map[string]any{
		"sub": acct.ID,
		"num": acct.Number,
		"ver": acct.TokenVersion,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Refresh verifies the refresh token and issues a new access token if the
// token version still matches the account.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := ParseAndVerifyHS256(refreshToken, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", 0, errors.New("invalid refresh token")
	}
	sub, _ := claims["sub"].(string)
	verFloat, _ := claims["ver"].(float64)
	ver := int(verFloat)

	acct, err := s.repo.GetByID(ctx, sub)
	if err != nil {
		return "", 0, errors.New("account not found")
	}
	if acct.TokenVersion != ver {
		return "", 0, errors.New("token version invalidated")
	}

	access, _, err := s.sign(acct, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// Logout increments token version so previously issued tokens become invalid.
func (s *Service) Logout(ctx context.Context, accountID string) error {
	acct, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	return s.repo.UpdateTokenVersion(ctx, acct.ID, acct.TokenVersion+1)
}
