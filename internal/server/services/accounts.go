package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/guard"
	"github.com/dmitrijs2005/potkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/repomanager"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// FaucetConfig gates the development airdrop.
type FaucetConfig struct {
	Enabled      bool
	MaxAmount    uint64
	LimitPerHour int
}

// AccountService serves ledger balances, transfer history and the faucet.
type AccountService struct {
	env    *Env
	store  guard.Store
	faucet FaucetConfig
}

func NewAccountService(env *Env, store guard.Store, faucet FaucetConfig) *AccountService {
	return &AccountService{env: env, store: store, faucet: faucet}
}

func (s *AccountService) Balance(ctx context.Context, addr cryptox.Address) (uint64, error) {
	return s.env.Gateway.Balance(ctx, s.env.Repos.Read(), addr)
}

// History returns the newest transfers touching addr. A non-positive limit
// selects the default.
func (s *AccountService) History(ctx context.Context, addr cryptox.Address, limit int) ([]*models.Transfer, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	return s.env.Repos.Read().Transfers().ListByAddress(ctx, addr, limit)
}

// Airdrop credits amount to addr when the faucet is enabled, at most
// LimitPerHour times per address per hour. Only user addresses can be
// funded.
func (s *AccountService) Airdrop(ctx context.Context, addr cryptox.Address, amount uint64) (uint64, error) {
	if !s.faucet.Enabled {
		return 0, common.ErrFaucetDisabled
	}
	if _, err := cryptox.PublicKeyFromAddress(addr); err != nil {
		return 0, fmt.Errorf("airdrop target: %w", err)
	}
	if amount == 0 || amount > s.faucet.MaxAmount {
		return 0, fmt.Errorf("%w: faucet pays 1..%d", common.ErrInvalidAmount, s.faucet.MaxAmount)
	}

	n, err := s.store.Incr(ctx, "faucet:"+addr.String(), time.Hour)
	if err != nil {
		return 0, fmt.Errorf("faucet limiter: %w", err)
	}
	if n > int64(s.faucet.LimitPerHour) {
		s.env.Metrics.RateLimited("faucet")
		return 0, common.ErrRateLimited
	}

	var balance uint64
	err = s.env.Repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := s.env.Gateway.Airdrop(ctx, r, addr, amount); err != nil {
			return err
		}
		var err error
		balance, err = s.env.Gateway.Balance(ctx, r, addr)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.env.Metrics.Event(metrics.EventAirdrop)
	s.env.Metrics.ValueMoved(models.TransferAirdrop, amount)
	s.env.Logger.Info(ctx, "airdrop", "address", addr, "amount", amount)
	return balance, nil
}
