// Package services implements the PotKeeper operations on top of the
// repositories, the ledger gateway and the request verifier.
package services

import (
	"context"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/logging"
	"github.com/dmitrijs2005/potkeeper/internal/server/ledger"
	"github.com/dmitrijs2005/potkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
)

// Env bundles the collaborators shared by the services. Metrics may be nil.
type Env struct {
	Repos    repomanager.RepositoryManager
	Deriver  *cryptox.Deriver
	Gateway  *ledger.Gateway
	Verifier *Verifier
	Clock    timex.Clock
	Rent     ledger.RentSchedule
	// RentSponsored makes the rent reserve carry storage deposits, so
	// callers pay none and closing refunds none.
	RentSponsored bool
	Metrics       *metrics.Metrics
	Logger        logging.Logger
}

// deposit returns the storage deposit a new record of the given space costs.
func (e *Env) deposit(space uint64) (uint64, error) {
	if e.RentSponsored {
		return 0, nil
	}
	return e.Rent.Minimum(space)
}

// collectRent moves a storage deposit from the payer into the rent reserve.
func (e *Env) collectRent(ctx context.Context, r repomanager.Repositories, p Proof, amount uint64) error {
	if amount == 0 {
		return nil
	}
	reserve, _, err := e.Deriver.ReserveAddress()
	if err != nil {
		return err
	}
	return e.Gateway.Transfer(ctx, r, ledger.Request{
		From:   p.Signer,
		To:     reserve,
		Amount: amount,
		Kind:   models.TransferRent,
		Auth:   p.authorization(),
	})
}

// refundRent returns a storage deposit from the rent reserve to owner.
func (e *Env) refundRent(ctx context.Context, r repomanager.Repositories, owner cryptox.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	reserve, bump, err := e.Deriver.ReserveAddress()
	if err != nil {
		return err
	}
	return e.Gateway.Transfer(ctx, r, ledger.Request{
		From:   reserve,
		To:     owner,
		Amount: amount,
		Kind:   models.TransferRefund,
		Auth:   ledger.DerivedSeeds{Seeds: cryptox.ReserveSeeds(), Bump: bump},
	})
}
