package services

import (
	"context"

	"github.com/dmitrijs2005/potkeeper/internal/api"
)

func (w *wallet) Balance(ctx context.Context) (uint64, error) {
	addr, err := w.Address()
	if err != nil {
		return 0, err
	}
	return w.client.GetBalance(ctx, addr.String())
}

func (w *wallet) Airdrop(ctx context.Context, amount uint64) (uint64, error) {
	addr, err := w.Address()
	if err != nil {
		return 0, err
	}
	return w.client.Airdrop(ctx, addr.String(), amount)
}

func (w *wallet) History(ctx context.Context, limit int) ([]api.Transfer, error) {
	addr, err := w.Address()
	if err != nil {
		return nil, err
	}
	return w.client.GetHistory(ctx, addr.String(), limit)
}
