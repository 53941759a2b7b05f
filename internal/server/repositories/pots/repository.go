// Package pots declares and implements persistence of savings pots.
package pots

import (
	"context"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
)

// Repository stores SavingsPot records keyed by their derived address.
type Repository interface {
	// Get returns common.ErrorNotFound when no pot exists at addr.
	Get(ctx context.Context, addr cryptox.Address) (*models.SavingsPot, error)
	// GetForUpdate is Get with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, addr cryptox.Address) (*models.SavingsPot, error)
	// Create inserts p or fails with common.ErrAccountAlreadyExists.
	Create(ctx context.Context, p *models.SavingsPot) error
	UpdateBalance(ctx context.Context, addr cryptox.Address, balance uint64) error
	// Delete removes the pot; common.ErrorNotFound if absent.
	Delete(ctx context.Context, addr cryptox.Address) error
	// ListByAuthority returns the pots of one owner ordered by name.
	ListByAuthority(ctx context.Context, authority cryptox.Address) ([]*models.SavingsPot, error)
}
