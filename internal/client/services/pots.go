package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/api"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
)

// resolvePot accepts either a pot address or the name of one of the
// wallet's own pots, whose address is derived locally.
func (w *wallet) resolvePot(ctx context.Context, ref string) (cryptox.Address, error) {
	if addr, err := cryptox.ParseAddress(ref); err == nil {
		return addr, nil
	}

	owner, err := w.Address()
	if err != nil {
		return cryptox.Address{}, err
	}
	d, err := w.programDeriver(ctx)
	if err != nil {
		return cryptox.Address{}, err
	}
	addr, _, err := d.PotAddress(owner, ref)
	return addr, err
}

func (w *wallet) CreatePot(ctx context.Context, name string, unlock time.Time) (*api.Pot, error) {
	unlockTime := timex.Unix(unlock)
	auth, err := w.sign(func(signer cryptox.Address, at uint64) []byte {
		return api.CreatePotPayload(signer, at, name, unlockTime)
	})
	if err != nil {
		return nil, err
	}
	return w.client.CreateSavingsPot(ctx, &api.CreateSavingsPotRequest{
		Name:       name,
		UnlockTime: unlockTime,
		Auth:       auth,
	})
}

func (w *wallet) Deposit(ctx context.Context, ref string, amount uint64) (*api.Pot, error) {
	pot, err := w.resolvePot(ctx, ref)
	if err != nil {
		return nil, err
	}
	auth, err := w.sign(func(signer cryptox.Address, at uint64) []byte {
		return api.DepositPayload(signer, at, pot, amount)
	})
	if err != nil {
		return nil, err
	}
	return w.client.DepositToPot(ctx, &api.DepositToPotRequest{
		Pot:    pot.String(),
		Amount: amount,
		Auth:   auth,
	})
}

// Withdraw sends amount from the pot to recipient, or back to the wallet
// when recipient is empty.
func (w *wallet) Withdraw(ctx context.Context, ref, recipient string, amount uint64) (*api.Pot, error) {
	pot, err := w.resolvePot(ctx, ref)
	if err != nil {
		return nil, err
	}

	var to cryptox.Address
	if recipient == "" {
		if to, err = w.Address(); err != nil {
			return nil, err
		}
	} else if to, err = cryptox.ParseAddress(recipient); err != nil {
		return nil, err
	}

	auth, err := w.sign(func(signer cryptox.Address, at uint64) []byte {
		return api.WithdrawPayload(signer, at, pot, to, amount)
	})
	if err != nil {
		return nil, err
	}
	return w.client.WithdrawFromPot(ctx, &api.WithdrawFromPotRequest{
		Pot:       pot.String(),
		Recipient: to.String(),
		Amount:    amount,
		Auth:      auth,
	})
}

func (w *wallet) ClosePot(ctx context.Context, ref string) (*api.CloseSavingsPotResponse, error) {
	pot, err := w.resolvePot(ctx, ref)
	if err != nil {
		return nil, err
	}
	auth, err := w.sign(func(signer cryptox.Address, at uint64) []byte {
		return api.ClosePayload(signer, at, pot)
	})
	if err != nil {
		return nil, err
	}
	return w.client.CloseSavingsPot(ctx, &api.CloseSavingsPotRequest{Pot: pot.String(), Auth: auth})
}

func (w *wallet) Pot(ctx context.Context, ref string) (*api.Pot, error) {
	if _, err := cryptox.ParseAddress(ref); err == nil {
		return w.client.GetPot(ctx, &api.GetPotRequest{Pot: ref})
	}
	owner, err := w.Address()
	if err != nil {
		return nil, err
	}
	return w.client.GetPot(ctx, &api.GetPotRequest{Owner: owner.String(), Name: ref})
}

func (w *wallet) Pots(ctx context.Context) ([]api.Pot, error) {
	owner, err := w.Address()
	if err != nil {
		return nil, err
	}
	return w.client.ListPots(ctx, owner.String())
}
