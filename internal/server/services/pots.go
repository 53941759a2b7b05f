package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/archive"
	"github.com/dmitrijs2005/potkeeper/internal/server/ledger"
	"github.com/dmitrijs2005/potkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
)

// CloseResult reports the value returned to the authority by a close.
type CloseResult struct {
	Swept    uint64
	Refunded uint64
}

type PotService struct {
	env      *Env
	archiver archive.Archiver
}

func NewPotService(env *Env, archiver archive.Archiver) *PotService {
	return &PotService{env: env, archiver: archiver}
}

// CreateSavingsPot opens a pot named name for the signer, locked until
// unlockTime (unix seconds).
func (s *PotService) CreateSavingsPot(ctx context.Context, p Proof, name string, unlockTime uint64) (*models.SavingsPot, error) {
	now := s.env.Clock.Now()

	if !models.ValidPotName(name) {
		return nil, common.ErrInvalidPotName
	}
	if unlockTime == 0 {
		return nil, common.ErrInvalidUnlockTime
	}
	if err := s.env.Verifier.Verify(ctx, p, now); err != nil {
		return nil, err
	}

	addr, bump, err := s.env.Deriver.PotAddress(p.Signer, name)
	if err != nil {
		return nil, err
	}
	deposit, err := s.env.deposit(models.PotSpace)
	if err != nil {
		return nil, err
	}

	pot := &models.SavingsPot{
		Address:    addr,
		Authority:  p.Signer,
		Name:       name,
		UnlockTime: unlockTime,
		CreatedAt:  timex.Unix(now),
		Bump:       bump,
		Deposit:    deposit,
	}

	err = s.env.Repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.Pots().Create(ctx, pot); err != nil {
			return err
		}
		return s.env.collectRent(ctx, r, p, deposit)
	})
	if err != nil {
		return nil, err
	}

	s.env.Metrics.Event(metrics.EventCreated)
	s.env.Metrics.ValueMoved(models.TransferRent, deposit)
	s.env.Logger.Info(ctx, "pot created", "pot", addr, "authority", p.Signer, "name", name, "unlock_time", unlockTime)
	return pot, nil
}

// DepositToPot moves amount from the signer into the pot. Anyone may
// deposit into any pot.
func (s *PotService) DepositToPot(ctx context.Context, p Proof, potAddr cryptox.Address, amount uint64) (*models.SavingsPot, error) {
	now := s.env.Clock.Now()

	if amount == 0 {
		return nil, common.ErrInvalidAmount
	}
	if err := s.env.Verifier.Verify(ctx, p, now); err != nil {
		return nil, err
	}

	var pot *models.SavingsPot
	err := s.env.Repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		var err error
		pot, err = r.Pots().GetForUpdate(ctx, potAddr)
		if err != nil {
			return err
		}
		if !s.env.Deriver.VerifyProgramAddress(pot.Address, pot.Seeds(), pot.Bump) {
			return fmt.Errorf("%w: pot does not match its seeds", common.ErrInvalidAddress)
		}

		balance, err := models.CheckedAdd(pot.Balance, amount)
		if err != nil {
			return err
		}
		err = s.env.Gateway.Transfer(ctx, r, ledger.Request{
			From:   p.Signer,
			To:     pot.Address,
			Amount: amount,
			Kind:   models.TransferDeposit,
			Auth:   p.authorization(),
		})
		if err != nil {
			return err
		}
		pot.Balance = balance
		return r.Pots().UpdateBalance(ctx, pot.Address, balance)
	})
	if err != nil {
		return nil, err
	}

	s.env.Metrics.Event(metrics.EventDeposit)
	s.env.Metrics.ValueMoved(models.TransferDeposit, amount)
	s.env.Logger.Info(ctx, "pot deposit", "pot", potAddr, "from", p.Signer, "amount", amount)
	return pot, nil
}

// WithdrawFromPot pays amount from an unlocked pot to recipient. Only the
// pot authority may withdraw. The time lock is checked first so a locked
// pot reports ErrPotLocked to everyone. The recipient must be a user
// address; pots and the rent reserve are rejected with ErrInvalidAddress.
func (s *PotService) WithdrawFromPot(ctx context.Context, p Proof, potAddr, recipient cryptox.Address, amount uint64) (*models.SavingsPot, error) {
	now := s.env.Clock.Now()

	if recipient.IsZero() {
		return nil, fmt.Errorf("%w: empty recipient", common.ErrInvalidAddress)
	}
	// Derived addresses hold value only through their record counters.
	if _, err := cryptox.PublicKeyFromAddress(recipient); err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}
	if err := s.env.Verifier.Verify(ctx, p, now); err != nil {
		return nil, err
	}

	var pot *models.SavingsPot
	err := s.env.Repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		var err error
		pot, err = r.Pots().GetForUpdate(ctx, potAddr)
		if err != nil {
			return err
		}
		if !pot.Unlocked(timex.Unix(now)) {
			return common.ErrPotLocked
		}
		if pot.Authority != p.Signer {
			return common.ErrorUnauthorized
		}
		if amount == 0 || amount > pot.Balance {
			return common.ErrInvalidWithdrawalAmount
		}

		balance, err := models.CheckedSub(pot.Balance, amount)
		if err != nil {
			return err
		}
		err = s.env.Gateway.Transfer(ctx, r, ledger.Request{
			From:   pot.Address,
			To:     recipient,
			Amount: amount,
			Kind:   models.TransferWithdrawal,
			Auth:   ledger.DerivedSeeds{Seeds: pot.Seeds(), Bump: pot.Bump},
		})
		if err != nil {
			return err
		}
		pot.Balance = balance
		return r.Pots().UpdateBalance(ctx, pot.Address, balance)
	})
	if err != nil {
		return nil, err
	}

	s.env.Metrics.Event(metrics.EventWithdraw)
	s.env.Metrics.ValueMoved(models.TransferWithdrawal, amount)
	s.env.Logger.Info(ctx, "pot withdrawal", "pot", potAddr, "recipient", recipient, "amount", amount)
	return pot, nil
}

// CloseSavingsPot sweeps the balance to the authority, deletes the record and
// refunds its storage deposit. Closing ignores the time lock.
func (s *PotService) CloseSavingsPot(ctx context.Context, p Proof, potAddr cryptox.Address) (*CloseResult, error) {
	now := s.env.Clock.Now()

	if err := s.env.Verifier.Verify(ctx, p, now); err != nil {
		return nil, err
	}

	var (
		pot    *models.SavingsPot
		result CloseResult
	)
	err := s.env.Repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		var err error
		pot, err = r.Pots().GetForUpdate(ctx, potAddr)
		if err != nil {
			return err
		}
		if pot.Authority != p.Signer {
			return common.ErrorUnauthorized
		}

		if pot.Balance > 0 {
			err = s.env.Gateway.Transfer(ctx, r, ledger.Request{
				From:   pot.Address,
				To:     pot.Authority,
				Amount: pot.Balance,
				Kind:   models.TransferSweep,
				Auth:   ledger.DerivedSeeds{Seeds: pot.Seeds(), Bump: pot.Bump},
			})
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
		}
		if err := r.Pots().Delete(ctx, pot.Address); err != nil {
			return err
		}
		if err := s.env.refundRent(ctx, r, pot.Authority, pot.Deposit); err != nil {
			return fmt.Errorf("refund: %w", err)
		}
		result = CloseResult{Swept: pot.Balance, Refunded: pot.Deposit}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.env.Metrics.Event(metrics.EventClosed)
	s.env.Metrics.ValueMoved(models.TransferSweep, result.Swept)
	s.env.Metrics.ValueMoved(models.TransferRefund, result.Refunded)
	s.env.Logger.Info(ctx, "pot closed", "pot", potAddr, "swept", result.Swept, "refunded", result.Refunded)

	key, err := s.archiver.Archive(ctx, archive.Receipt{
		Pot:       pot.Address,
		Authority: pot.Authority,
		Name:      pot.Name,
		Swept:     result.Swept,
		Refunded:  result.Refunded,
		CreatedAt: pot.CreatedAt,
		ClosedAt:  timex.Unix(now),
	})
	if err != nil {
		s.env.Logger.Warn(ctx, "receipt not archived", "pot", potAddr, "error", err)
	} else if key != "" {
		s.env.Logger.Debug(ctx, "receipt archived", "pot", potAddr, "key", key)
	}
	return &result, nil
}

func (s *PotService) GetPot(ctx context.Context, addr cryptox.Address) (*models.SavingsPot, error) {
	return s.env.Repos.Read().Pots().Get(ctx, addr)
}

// FindPot looks a pot up by its owner and name.
func (s *PotService) FindPot(ctx context.Context, owner cryptox.Address, name string) (*models.SavingsPot, error) {
	if !models.ValidPotName(name) {
		return nil, common.ErrInvalidPotName
	}
	addr, _, err := s.env.Deriver.PotAddress(owner, name)
	if err != nil {
		return nil, err
	}
	return s.GetPot(ctx, addr)
}

func (s *PotService) ListPots(ctx context.Context, owner cryptox.Address) ([]*models.SavingsPot, error) {
	return s.env.Repos.Read().Pots().ListByAuthority(ctx, owner)
}
