// Package profiles declares and implements persistence of user profiles.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
)

// Repository stores UserProfile records keyed by their derived address.
type Repository interface {
	// Get returns common.ErrorNotFound when no profile exists at addr.
	Get(ctx context.Context, addr cryptox.Address) (*models.UserProfile, error)
	// GetForUpdate is Get with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, addr cryptox.Address) (*models.UserProfile, error)
	// Create inserts p or fails with common.ErrAccountAlreadyExists.
	Create(ctx context.Context, p *models.UserProfile) error
	// Update overwrites the display fields and UpdatedAt.
	Update(ctx context.Context, p *models.UserProfile) error
}
