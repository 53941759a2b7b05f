// Package holdings stores the value held at each ledger address.
package holdings

import (
	"context"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
)

// Repository maps addresses to amounts. Absent addresses hold zero.
type Repository interface {
	Get(ctx context.Context, addr cryptox.Address) (uint64, error)
	// GetForUpdate is Get with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, addr cryptox.Address) (uint64, error)
	Set(ctx context.Context, addr cryptox.Address, amount uint64) error
}
