package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/api"
	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/auth"
	"github.com/dmitrijs2005/potkeeper/internal/server/guard"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/repomanager"
)

const challengeTTL = 5 * time.Minute

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthConfig carries the JWT secret and token lifetimes.
type AuthConfig struct {
	Secret          []byte
	AccessValidity  time.Duration
	RefreshValidity time.Duration
}

// AuthService logs wallets in by challenge signature and issues sessions:
// - GetChallenge: hand out a one-time nonce
// - Login: verify the signed nonce and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
type AuthService struct {
	env   *Env
	store guard.Store
	cfg   AuthConfig
}

func NewAuthService(env *Env, store guard.Store, cfg AuthConfig) *AuthService {
	return &AuthService{env: env, store: store, cfg: cfg}
}

func challengeKey(addr cryptox.Address) string {
	return "nonce:" + addr.String()
}

// GetChallenge returns a nonce the wallet must sign to log in. A new
// challenge replaces any outstanding one.
func (s *AuthService) GetChallenge(ctx context.Context, addr cryptox.Address) (string, error) {
	if _, err := cryptox.PublicKeyFromAddress(addr); err != nil {
		return "", fmt.Errorf("%w: not a wallet key", common.ErrInvalidAddress)
	}

	nonce, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}
	if err := s.store.Put(ctx, challengeKey(addr), nonce, challengeTTL); err != nil {
		return "", fmt.Errorf("store challenge: %w", err)
	}
	return nonce, nil
}

// Login consumes the outstanding challenge for addr. A challenge is single
// use whether or not the signature checks out.
func (s *AuthService) Login(ctx context.Context, addr cryptox.Address, signature []byte) (*TokenPair, error) {
	nonce, ok, err := s.store.Take(ctx, challengeKey(addr))
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	if !cryptox.Verify(addr, api.LoginMessage(addr, nonce), signature) {
		return nil, common.ErrorUnauthorized
	}

	var pair *TokenPair
	err = s.env.Repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		var err error
		pair, err = s.generateTokenPair(ctx, r, addr.String())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.env.Logger.Info(ctx, "login", "address", addr)
	return pair, nil
}

// RefreshToken validates a refresh token, rotates it transactionally and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	now := s.env.Clock.Now()

	var pair *TokenPair
	err := s.env.Repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		token, err := r.RefreshTokens().Find(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error searching refresh token: %w", err)
		}
		if token.Expires.Before(now) {
			return common.ErrRefreshTokenExpired
		}
		if err := r.RefreshTokens().Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		pair, err = s.generateTokenPair(ctx, r, token.Address)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// ParseAccessToken returns the wallet address an access token was issued to.
func (s *AuthService) ParseAccessToken(token string) (cryptox.Address, error) {
	sub, err := auth.AddressFromToken(token, s.cfg.Secret, s.env.Clock.Now())
	if err != nil {
		return cryptox.Address{}, err
	}
	addr, err := cryptox.ParseAddress(sub)
	if err != nil {
		return cryptox.Address{}, fmt.Errorf("%w: bad subject", common.ErrInvalidToken)
	}
	return addr, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, r repomanager.Repositories, address string) (*TokenPair, error) {
	now := s.env.Clock.Now()

	accessToken, err := auth.GenerateToken(address, s.cfg.Secret, now, s.cfg.AccessValidity)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if err := r.RefreshTokens().Create(ctx, address, refreshToken, now.Add(s.cfg.RefreshValidity)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
