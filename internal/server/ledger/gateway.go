// Package ledger moves native value between addresses. Every movement is
// recorded in the transfer journal through the same transaction-bound
// repositories the caller updates its records with.
package ledger

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/holdings"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/transfers"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
	"github.com/google/uuid"
)

// Book is the storage a transfer runs against. repomanager.Repositories
// satisfies it.
type Book interface {
	Holdings() holdings.Repository
	Transfers() transfers.Repository
}

type Request struct {
	From   cryptox.Address
	To     cryptox.Address
	Amount uint64
	Kind   models.TransferKind
	Auth   Authorization
}

type Gateway struct {
	deriver *cryptox.Deriver
	clock   timex.Clock
}

func NewGateway(deriver *cryptox.Deriver, clock timex.Clock) *Gateway {
	return &Gateway{deriver: deriver, clock: clock}
}

func failed(err error) error {
	return fmt.Errorf("%w: %w", common.ErrTransferFailed, err)
}

// Transfer debits From and credits To. Every failure wraps
// common.ErrTransferFailed; a short source additionally wraps
// common.ErrInsufficientFunds.
func (g *Gateway) Transfer(ctx context.Context, book Book, req Request) error {
	if req.Amount == 0 {
		return failed(common.ErrInvalidAmount)
	}
	if req.Auth == nil {
		return failed(errMissingAuthority)
	}
	if err := req.Auth.Authorize(g.deriver, req.From); err != nil {
		return failed(err)
	}

	h := book.Holdings()
	fromBalance, err := h.GetForUpdate(ctx, req.From)
	if err != nil {
		return err
	}
	if fromBalance < req.Amount {
		return failed(common.ErrInsufficientFunds)
	}
	if err := h.Set(ctx, req.From, fromBalance-req.Amount); err != nil {
		return err
	}

	if err := g.credit(ctx, h, req.To, req.Amount); err != nil {
		return err
	}
	return g.record(ctx, book, req.From, req.To, req.Amount, req.Kind)
}

func (g *Gateway) credit(ctx context.Context, h holdings.Repository, to cryptox.Address, amount uint64) error {
	toBalance, err := h.GetForUpdate(ctx, to)
	if err != nil {
		return err
	}
	sum, err := models.CheckedAdd(toBalance, amount)
	if err != nil {
		return failed(err)
	}
	return h.Set(ctx, to, sum)
}

func (g *Gateway) record(ctx context.Context, book Book, from, to cryptox.Address, amount uint64, kind models.TransferKind) error {
	return book.Transfers().Create(ctx, &models.Transfer{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Amount:    amount,
		Kind:      kind,
		CreatedAt: g.clock.Now().UTC(),
	})
}

func (g *Gateway) Balance(ctx context.Context, book Book, addr cryptox.Address) (uint64, error) {
	return book.Holdings().Get(ctx, addr)
}

// Airdrop mints amount into to. It is only reachable through the
// development faucet.
func (g *Gateway) Airdrop(ctx context.Context, book Book, to cryptox.Address, amount uint64) error {
	if amount == 0 {
		return common.ErrInvalidAmount
	}
	if err := g.credit(ctx, book.Holdings(), to, amount); err != nil {
		return err
	}
	return g.record(ctx, book, cryptox.Address{}, to, amount, models.TransferAirdrop)
}
