// Package repomanager groups the repositories behind one handle and runs
// multi-record operations atomically.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/holdings"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/pots"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/transfers"
)

// Repositories is a set of repositories sharing one handle, either the
// connection pool or an open transaction.
type Repositories interface {
	Profiles() profiles.Repository
	Pots() pots.Repository
	Holdings() holdings.Repository
	Transfers() transfers.Repository
	RefreshTokens() refreshtokens.Repository
}

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// Read returns repositories for single-statement reads and writes.
	Read() Repositories
	// WithTx runs fn atomically: either every write made through the
	// provided repositories is applied or none is.
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	Close() error
}
