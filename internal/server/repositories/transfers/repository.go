// Package transfers stores the journal of ledger movements.
package transfers

import (
	"context"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Transfer) error
	// ListByAddress returns the newest entries touching addr, at most limit.
	ListByAddress(ctx context.Context, addr cryptox.Address, limit int) ([]*models.Transfer, error)
}
